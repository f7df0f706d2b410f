package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"s3-utils/core/render"
	"s3-utils/core/scan"

	"github.com/spf13/cobra"
)

var (
	duBucket      string
	duPrefix      string
	duSuffix      string
	duAfter       string
	duBefore      string
	duDepth       int
	duConcurrency int
	duFormat      string
	duUnits       string
)

var duCmd = &cobra.Command{
	Use:   "du",
	Short: "Summarize object count and size in a bucket",
	Long: `Scans a bucket and prints totals, a per-prefix rollup, and a size
histogram. With --concurrency above 1 the namespace is partitioned on
the first-level prefixes and scanned in parallel; the result is
identical to a sequential scan.

Examples:
  # Whole bucket, default rollup depth
  du --bucket media

  # Parallel scan with a two-level rollup, machine-readable
  du --bucket media --concurrency 8 --depth 2 --format json`,
	RunE: runDu,
}

func init() {
	duCmd.Flags().StringVar(&duBucket, "bucket", "", "Bucket to scan (required)")
	duCmd.Flags().StringVar(&duPrefix, "prefix", "", "Only keys starting with this prefix")
	duCmd.Flags().StringVar(&duSuffix, "suffix", "", "Only keys ending with this suffix")
	duCmd.Flags().StringVar(&duAfter, "after", "", "Only objects modified at or after this time (RFC 3339 or YYYY-MM-DD)")
	duCmd.Flags().StringVar(&duBefore, "before", "", "Only objects modified before this time (RFC 3339 or YYYY-MM-DD)")
	duCmd.Flags().IntVar(&duDepth, "depth", 0, "Prefix rollup depth (0 uses the configured default)")
	duCmd.Flags().IntVar(&duConcurrency, "concurrency", 0, "Partition workers (0 uses the configured default, 1 forces sequential)")
	duCmd.Flags().StringVar(&duFormat, "format", "text", "Output format (text or json)")
	duCmd.Flags().StringVar(&duUnits, "units", "binary", "Size units (binary or decimal)")
	_ = duCmd.MarkFlagRequired("bucket")

	RootCmd.AddCommand(duCmd)
}

func runDu(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	filter, err := parseFilter(duPrefix, duSuffix, duAfter, duBefore)
	if err != nil {
		return err
	}
	units, err := parseUnits(duUnits)
	if err != nil {
		return err
	}
	if duFormat != "text" && duFormat != "json" {
		return fmt.Errorf("invalid --format value %q (expected text or json)", duFormat)
	}

	opts := scan.FromConfig(rt.cfg.Scan)
	if duDepth > 0 {
		opts.Aggregate.PrefixDepth = duDepth
	}
	if duConcurrency > 0 {
		opts.Concurrency = duConcurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	acc, err := scan.Scan(ctx, rt.client, rt.policy, rt.logger, duBucket, filter, opts)
	if err != nil {
		return err
	}

	if duFormat == "json" {
		return render.WriteJSON(os.Stdout, acc)
	}
	return render.WriteText(os.Stdout, acc, units)
}

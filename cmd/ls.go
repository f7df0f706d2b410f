package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"s3-utils/core/enumerate"
	"s3-utils/core/render"

	"github.com/spf13/cobra"
)

var (
	lsBucket string
	lsPrefix string
	lsSuffix string
	lsAfter  string
	lsBefore string
	lsFormat string
	lsUnits  string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List objects in a bucket",
	Long: `Streams the objects of a bucket that match the given filters,
one line per object. Listing is paginated, so memory stays flat no
matter how many objects the bucket holds.

Examples:
  # All objects under a prefix
  ls --bucket media --prefix uploads/

  # Log files modified this year, as JSON lines
  ls --bucket logs --suffix .log --after 2026-01-01 --format json`,
	RunE: runLs,
}

func init() {
	lsCmd.Flags().StringVar(&lsBucket, "bucket", "", "Bucket to list (required)")
	lsCmd.Flags().StringVar(&lsPrefix, "prefix", "", "Only keys starting with this prefix")
	lsCmd.Flags().StringVar(&lsSuffix, "suffix", "", "Only keys ending with this suffix")
	lsCmd.Flags().StringVar(&lsAfter, "after", "", "Only objects modified at or after this time (RFC 3339 or YYYY-MM-DD)")
	lsCmd.Flags().StringVar(&lsBefore, "before", "", "Only objects modified before this time (RFC 3339 or YYYY-MM-DD)")
	lsCmd.Flags().StringVar(&lsFormat, "format", "text", "Output format (text or json)")
	lsCmd.Flags().StringVar(&lsUnits, "units", "binary", "Size units (binary or decimal)")
	_ = lsCmd.MarkFlagRequired("bucket")

	RootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	filter, err := parseFilter(lsPrefix, lsSuffix, lsAfter, lsBefore)
	if err != nil {
		return err
	}
	units, err := parseUnits(lsUnits)
	if err != nil {
		return err
	}
	if lsFormat != "text" && lsFormat != "json" {
		return fmt.Errorf("invalid --format value %q (expected text or json)", lsFormat)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	e := enumerate.New(rt.client, rt.policy, lsBucket, filter)
	var count int64
	for {
		obj, ok, err := e.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		count++

		if lsFormat == "json" {
			if err := enc.Encode(obj); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%12s  %s  %s\n",
			render.FormatBytes(obj.Size, units),
			obj.LastModified.UTC().Format(time.RFC3339),
			obj.Key,
		)
	}

	if lsFormat == "text" {
		fmt.Printf("\n%s objects\n", render.FormatCount(count))
	}
	return nil
}

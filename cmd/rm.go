package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"s3-utils/core/enumerate"
	"s3-utils/core/render"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rmBucket string
	rmPrefix string
	rmSuffix string
	rmAfter  string
	rmBefore string
	rmDryRun bool
	rmYes    bool
)

var rmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Delete matching objects from a bucket",
	Long: `Enumerates the objects matching the given filters and deletes them
in batches. The matching set is shown first and nothing is removed
without confirmation.

Examples:
  # Preview what would be deleted
  rm --bucket logs --prefix tmp/ --dry-run

  # Delete old log files (with interactive confirmation)
  rm --bucket logs --suffix .log --before 2025-01-01

  # Delete with auto-confirm (non-interactive)
  rm --bucket logs --prefix tmp/ --yes`,
	RunE: runRm,
}

func init() {
	rmCmd.Flags().StringVar(&rmBucket, "bucket", "", "Bucket to delete from (required)")
	rmCmd.Flags().StringVar(&rmPrefix, "prefix", "", "Only keys starting with this prefix")
	rmCmd.Flags().StringVar(&rmSuffix, "suffix", "", "Only keys ending with this suffix")
	rmCmd.Flags().StringVar(&rmAfter, "after", "", "Only objects modified at or after this time (RFC 3339 or YYYY-MM-DD)")
	rmCmd.Flags().StringVar(&rmBefore, "before", "", "Only objects modified before this time (RFC 3339 or YYYY-MM-DD)")
	rmCmd.Flags().BoolVar(&rmDryRun, "dry-run", false, "Force dry-run (no deletions even with --yes)")
	rmCmd.Flags().BoolVar(&rmYes, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = rmCmd.MarkFlagRequired("bucket")

	RootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()
	l := rt.logger

	filter, err := parseFilter(rmPrefix, rmSuffix, rmAfter, rmBefore)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exists, err := rt.client.BucketExists(ctx, rmBucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", rmBucket)
	}

	// Collect the matching set first so the user confirms an exact count.
	var keys []string
	var bytes int64
	e := enumerate.New(rt.client, rt.policy, rmBucket, filter)
	for {
		obj, ok, err := e.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		keys = append(keys, obj.Key)
		bytes += obj.Size
	}

	if len(keys) == 0 {
		l.Info("No objects match the given filters.")
		return nil
	}

	l.Info("Objects matched",
		zap.String("bucket", rmBucket),
		zap.Int("count", len(keys)),
		zap.String("size", render.FormatBytes(bytes, render.UnitsBinary)),
	)

	// Show a sample of what will go away
	maxShow := 10
	for i, key := range keys {
		if i >= maxShow {
			l.Info("Additional objects not shown", zap.Int("count", len(keys)-maxShow))
			break
		}
		fmt.Printf("  %s\n", key)
	}

	if rmDryRun {
		l.Info("Dry-run: no objects were deleted.")
		return nil
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			select {
			case objectsCh <- minio.ObjectInfo{Key: key}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var failed int
	for rmErr := range rt.client.RemoveObjects(ctx, rmBucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed++
		l.Error("Failed to delete object",
			zap.String("key", rmErr.ObjectName),
			zap.Error(rmErr.Err),
		)
	}
	if failed > 0 {
		return fmt.Errorf("failed to delete %d of %d objects", failed, len(keys))
	}

	l.Info("Deleted objects", zap.Int("count", len(keys)))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if rmYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}

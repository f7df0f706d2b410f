package scan

import (
	"context"

	"s3-utils/core/aggregate"
	"s3-utils/core/enumerate"
	"s3-utils/core/retry"
	"s3-utils/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds scan tuning.
type Config struct {
	// MaxConcurrency is the partition worker count for parallel scans.
	MaxConcurrency int `mapstructure:"max_concurrency" default:"4"`
	// PrefixDepth is the rollup depth for aggregation.
	PrefixDepth int `mapstructure:"prefix_depth" default:"1"`
	// MaxPrefixes caps the distinct prefixes tracked per scan.
	MaxPrefixes int `mapstructure:"max_prefixes" default:"1024"`
}

// Options tunes one scan invocation.
type Options struct {
	// Concurrency is the number of partition workers; values <= 1 run a
	// single sequential enumeration.
	Concurrency int
	// Aggregate tunes the accumulator each partition uses.
	Aggregate aggregate.Options
}

// FromConfig derives scan options from the configuration.
func FromConfig(cfg Config) Options {
	return Options{
		Concurrency: cfg.MaxConcurrency,
		Aggregate: aggregate.Options{
			PrefixDepth: cfg.PrefixDepth,
			MaxPrefixes: cfg.MaxPrefixes,
		},
	}
}

// Scan enumerates a bucket under the given filter and aggregates the
// result. With Concurrency > 1 the namespace is partitioned on the
// first-level common prefixes and each partition is scanned by its own
// enumerator/accumulator pair; the accumulators are merged sequentially
// once every worker has finished (fork-join, no shared mutable state).
//
// Any failure aborts the whole scan: partial results are never returned
// as if they were complete.
func Scan(ctx context.Context, client storage.Client, policy *retry.Policy, logger *zap.Logger, bucket string, filter enumerate.Filter, opts Options) (*aggregate.Accumulator, error) {
	if opts.Concurrency <= 1 {
		acc := aggregate.New(opts.Aggregate)
		if err := scanInto(ctx, acc, client, policy, bucket, filter); err != nil {
			return nil, err
		}
		return acc, nil
	}

	// Objects living directly at the filter prefix are aggregated while
	// discovering partitions, so nothing is listed twice.
	root := aggregate.New(opts.Aggregate)
	partitions, err := collectPartitions(ctx, root, client, policy, bucket, filter)
	if err != nil {
		return nil, err
	}

	logger.Debug("partitioned scan",
		zap.String("bucket", bucket),
		zap.Int("partitions", len(partitions)),
		zap.Int("concurrency", opts.Concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	accumulators := make([]*aggregate.Accumulator, len(partitions))
	for i, partition := range partitions {
		g.Go(func() error {
			acc := aggregate.New(opts.Aggregate)
			partitionFilter := filter
			partitionFilter.Prefix = partition
			if err := scanInto(gctx, acc, client, policy, bucket, partitionFilter); err != nil {
				return err
			}
			accumulators[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Join: merge is associative and commutative, order does not matter.
	for _, acc := range accumulators {
		if err := root.Merge(acc); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// scanInto drains one enumeration into the accumulator.
func scanInto(ctx context.Context, acc *aggregate.Accumulator, client storage.Client, policy *retry.Policy, bucket string, filter enumerate.Filter) error {
	e := enumerate.New(client, policy, bucket, filter)
	for {
		obj, ok, err := e.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		acc.Add(obj)
	}
}

// collectPartitions lists the filter prefix with a "/" delimiter,
// returning the first-level common prefixes and folding the keys that
// live directly at that level into the root accumulator.
func collectPartitions(ctx context.Context, root *aggregate.Accumulator, client storage.Client, policy *retry.Policy, bucket string, filter enumerate.Filter) ([]string, error) {
	var partitions []string
	cursor := ""
	for {
		var page storage.Page
		err := policy.Do(ctx, "list", func() error {
			var err error
			page, err = client.ListPage(ctx, storage.PageRequest{
				Bucket:    bucket,
				Prefix:    filter.Prefix,
				Delimiter: "/",
				Cursor:    cursor,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, info := range page.Objects {
			obj, ok := enumerate.FromObjectInfo(info)
			if !ok {
				continue
			}
			if filter.Match(obj) {
				root.Add(obj)
			}
		}
		partitions = append(partitions, page.Prefixes...)

		cursor = page.NextCursor
		if cursor == "" {
			return partitions, nil
		}
	}
}

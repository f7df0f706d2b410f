package snapshot

import (
	"context"
	"fmt"
	"time"

	"s3-utils/core/enumerate"
	"s3-utils/core/retry"
	"s3-utils/core/scan"
	"s3-utils/core/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service takes snapshots of all buckets visible to the client.
type Service struct {
	client      storage.Client
	policy      *retry.Policy
	logger      *zap.Logger
	concurrency int
}

// NewService creates a new snapshot service. concurrency is the number of
// buckets scanned in parallel; values <= 0 mean sequential.
func NewService(client storage.Client, policy *retry.Policy, logger *zap.Logger, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		client:      client,
		policy:      policy,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Take scans every bucket and returns a snapshot of its object counts and
// sizes. Buckets are scanned in parallel under the concurrency limit; each
// worker writes only its own result slot, and the snapshot map is
// assembled after all workers have joined.
func (s *Service) Take(ctx context.Context) (*Snapshot, error) {
	start := time.Now().UTC().Truncate(time.Second)

	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	results := make([]Stats, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, bucket := range buckets {
		g.Go(func() error {
			s.logger.Info("Scanning bucket", zap.String("bucket", bucket.Name))

			acc, err := scan.Scan(gctx, s.client, s.policy, s.logger, bucket.Name, enumerate.Filter{}, scan.Options{})
			if err != nil {
				return fmt.Errorf("scan bucket %s: %w", bucket.Name, err)
			}
			results[i] = Stats{Files: acc.Objects, Bytes: acc.Bytes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Buckets: make(map[string]Stats, len(buckets)),
		Metadata: Metadata{
			Version: Version,
			ID:      uuid.NewString(),
			Start:   start,
			End:     time.Now().UTC().Truncate(time.Second),
		},
	}
	for i, bucket := range buckets {
		snap.Buckets[bucket.Name] = results[i]
	}
	return snap, nil
}

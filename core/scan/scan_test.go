package scan_test

import (
	"context"
	"errors"
	"testing"

	"s3-utils/core/aggregate"
	"s3-utils/core/enumerate"
	"s3-utils/core/retry"
	"s3-utils/core/scan"
	"s3-utils/core/storage"
	"s3-utils/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPolicy() *retry.Policy {
	return retry.NewPolicy(retry.Config{MaxAttempts: 2, BaseDelayMS: 1, MaxDelayMS: 2}, zap.NewNop())
}

// pageMatcher matches a ListPage request on prefix, delimiter, and cursor.
func pageMatcher(prefix, delimiter, cursor string) interface{} {
	return mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Prefix == prefix && req.Delimiter == delimiter && req.Cursor == cursor
	})
}

func TestScan_Sequential(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, pageMatcher("", "", "")).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "a/1", Size: 100},
			{Key: "a/2", Size: 200},
			{Key: "b/1", Size: 50},
		},
	}, nil)

	acc, err := scan.Scan(context.Background(), mockClient, testPolicy(), zap.NewNop(), "backups", enumerate.Filter{}, scan.Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), acc.Objects)
	assert.Equal(t, int64(350), acc.Bytes)
	assert.Equal(t, aggregate.Rollup{Objects: 2, Bytes: 300}, acc.Prefixes["a/"])
	assert.Equal(t, aggregate.Rollup{Objects: 1, Bytes: 50}, acc.Prefixes["b/"])
}

func TestScan_PartitionedMatchesSequential(t *testing.T) {
	mockClient := new(mocks.Client)

	// Partition discovery: two common prefixes plus one root-level key.
	mockClient.On("ListPage", mock.Anything, pageMatcher("", "/", "")).Return(storage.Page{
		Objects:  []minio.ObjectInfo{{Key: "root.txt", Size: 7}},
		Prefixes: []string{"a/", "b/"},
	}, nil)

	// Per-partition recursive listings.
	mockClient.On("ListPage", mock.Anything, pageMatcher("a/", "", "")).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "a/1", Size: 100},
			{Key: "a/2", Size: 200},
		},
	}, nil)
	mockClient.On("ListPage", mock.Anything, pageMatcher("b/", "", "")).Return(storage.Page{
		Objects: []minio.ObjectInfo{{Key: "b/1", Size: 50}},
	}, nil)

	acc, err := scan.Scan(context.Background(), mockClient, testPolicy(), zap.NewNop(), "backups", enumerate.Filter{}, scan.Options{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(4), acc.Objects)
	assert.Equal(t, int64(357), acc.Bytes)
	assert.Equal(t, aggregate.Rollup{Objects: 2, Bytes: 300}, acc.Prefixes["a/"])
	assert.Equal(t, aggregate.Rollup{Objects: 1, Bytes: 50}, acc.Prefixes["b/"])
}

func TestScan_WorkerFailureAbortsScan(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, pageMatcher("", "/", "")).Return(storage.Page{
		Prefixes: []string{"a/", "b/"},
	}, nil)
	mockClient.On("ListPage", mock.Anything, pageMatcher("a/", "", "")).Return(storage.Page{
		Objects: []minio.ObjectInfo{{Key: "a/1", Size: 100}},
	}, nil)
	authErr := &storage.Error{Op: "list", Kind: storage.ErrAuth, Err: errors.New("access denied")}
	mockClient.On("ListPage", mock.Anything, pageMatcher("b/", "", "")).Return(storage.Page{}, authErr)

	acc, err := scan.Scan(context.Background(), mockClient, testPolicy(), zap.NewNop(), "backups", enumerate.Filter{}, scan.Options{Concurrency: 2})

	// No partial accumulator is surfaced on failure.
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, storage.ErrAuth)
}

func TestScan_FilterAppliedAtRootLevel(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, pageMatcher("", "/", "")).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "keep.log", Size: 5},
			{Key: "drop.tmp", Size: 9},
		},
	}, nil)

	acc, err := scan.Scan(context.Background(), mockClient, testPolicy(), zap.NewNop(), "backups", enumerate.Filter{Suffix: ".log"}, scan.Options{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(1), acc.Objects)
	assert.Equal(t, int64(5), acc.Bytes)
}

package enumerate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"s3-utils/core/enumerate"
	"s3-utils/core/retry"
	"s3-utils/core/storage"
	"s3-utils/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPolicy() *retry.Policy {
	return retry.NewPolicy(retry.Config{MaxAttempts: 3, BaseDelayMS: 1, MaxDelayMS: 2}, zap.NewNop())
}

func drain(t *testing.T, e *enumerate.Enumerator) []enumerate.Object {
	t.Helper()
	var out []enumerate.Object
	for {
		obj, ok, err := e.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, obj)
	}
}

func TestNext_MultiPage(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == ""
	})).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "a/1", Size: 100},
			{Key: "a/2", Size: 200},
		},
		NextCursor: "tok-1",
	}, nil)
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == "tok-1"
	})).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "b/1", Size: 50},
		},
	}, nil)

	e := enumerate.New(mockClient, testPolicy(), "backups", enumerate.Filter{})
	objects := drain(t, e)

	// All objects across both pages, in listing order, then termination.
	require.Len(t, objects, 3)
	assert.Equal(t, "a/1", objects[0].Key)
	assert.Equal(t, "a/2", objects[1].Key)
	assert.Equal(t, "b/1", objects[2].Key)
	mockClient.AssertNumberOfCalls(t, "ListPage", 2)
}

func TestNext_EmptyFinalPage(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == ""
	})).Return(storage.Page{
		Objects:    []minio.ObjectInfo{{Key: "a/1", Size: 1}},
		NextCursor: "tok-1",
	}, nil)
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == "tok-1"
	})).Return(storage.Page{}, nil)

	e := enumerate.New(mockClient, testPolicy(), "backups", enumerate.Filter{})
	objects := drain(t, e)

	// Empty final page with no cursor terminates, does not loop.
	assert.Len(t, objects, 1)
	mockClient.AssertNumberOfCalls(t, "ListPage", 2)
}

func TestNext_SkipsDirectoryPlaceholders(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, mock.Anything).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "a/", Size: 0},
			{Key: "a/1", Size: 100},
		},
	}, nil)

	e := enumerate.New(mockClient, testPolicy(), "backups", enumerate.Filter{})
	objects := drain(t, e)

	require.Len(t, objects, 1)
	assert.Equal(t, "a/1", objects[0].Key)
}

func TestNext_FilterApplied(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, mock.Anything).Return(storage.Page{
		Objects: []minio.ObjectInfo{
			{Key: "logs/app.log", Size: 10, LastModified: now},
			{Key: "logs/app.tmp", Size: 20, LastModified: now},
			{Key: "logs/old.log", Size: 30, LastModified: now.AddDate(-1, 0, 0)},
		},
	}, nil)

	filter := enumerate.Filter{Suffix: ".log", After: now.AddDate(0, -1, 0)}
	e := enumerate.New(mockClient, testPolicy(), "backups", filter)
	objects := drain(t, e)

	require.Len(t, objects, 1)
	assert.Equal(t, "logs/app.log", objects[0].Key)
}

func TestNext_AuthErrorNoRetry(t *testing.T) {
	mockClient := new(mocks.Client)
	authErr := &storage.Error{Op: "list", Bucket: "backups", Kind: storage.ErrAuth, Err: errors.New("access denied")}
	mockClient.On("ListPage", mock.Anything, mock.Anything).Return(storage.Page{}, authErr)

	e := enumerate.New(mockClient, testPolicy(), "backups", enumerate.Filter{})
	_, ok, err := e.Next(context.Background())

	assert.False(t, ok)
	assert.ErrorIs(t, err, storage.ErrAuth)

	var enumErr *enumerate.Error
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "", enumErr.Cursor)

	// Terminal error: exactly one attempt.
	mockClient.AssertNumberOfCalls(t, "ListPage", 1)
}

func TestNext_ExhaustedRetriesCarryCursor(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == ""
	})).Return(storage.Page{
		Objects:    []minio.ObjectInfo{{Key: "a/1", Size: 1}},
		NextCursor: "tok-1",
	}, nil)
	transient := &storage.Error{Op: "list", Bucket: "backups", Kind: storage.ErrConnectivity, Err: errors.New("connection reset")}
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == "tok-1"
	})).Return(storage.Page{}, transient)

	e := enumerate.New(mockClient, testPolicy(), "backups", enumerate.Filter{})

	obj, ok, err := e.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a/1", obj.Key)

	_, ok, err = e.Next(context.Background())
	assert.False(t, ok)

	var enumErr *enumerate.Error
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "tok-1", enumErr.Cursor)

	var exhausted *retry.ExhaustedError
	assert.ErrorAs(t, err, &exhausted)

	// First page once, failing page retried to the attempt cap.
	mockClient.AssertNumberOfCalls(t, "ListPage", 4)
}

func TestNewFromCursor(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListPage", mock.Anything, mock.MatchedBy(func(req storage.PageRequest) bool {
		return req.Cursor == "tok-1"
	})).Return(storage.Page{
		Objects: []minio.ObjectInfo{{Key: "b/1", Size: 50}},
	}, nil)

	e := enumerate.NewFromCursor(mockClient, testPolicy(), "backups", enumerate.Filter{}, "tok-1")
	objects := drain(t, e)

	require.Len(t, objects, 1)
	assert.Equal(t, "b/1", objects[0].Key)
}

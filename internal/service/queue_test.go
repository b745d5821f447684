package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueueARN = "arn:aws:sqs:ap-northeast-1:123456789012:test-queue"

func newQueueService(t *testing.T) (*service.QueueService, *mock.SQSClient, string) {
	client := mock.NewSQSClient()
	url := client.AddQueue("ap-northeast-1", "123456789012", "test-queue")
	svc := service.NewQueueService(client.Factory(), service.NewQueueURLCache(8, time.Minute), "us-east-1")
	return svc, client, url
}

func TestResolveURL(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved URL is cached", func(tt *testing.T) {
		svc, client, url := newQueueService(tt)

		u1, ok := svc.ResolveURL(ctx, testQueueARN)
		require.True(tt, ok)
		u2, ok := svc.ResolveURL(ctx, testQueueARN)
		require.True(tt, ok)

		assert.Equal(tt, url, u1)
		assert.Equal(tt, u1, u2)
		assert.Equal(tt, 1, client.GetQueueURLCount)
		assert.Equal(tt, []string{"ap-northeast-1"}, client.Regions)
	})

	t.Run("malformed ARN is absent", func(tt *testing.T) {
		svc, client, _ := newQueueService(tt)

		url, ok := svc.ResolveURL(ctx, "not-an-arn")
		assert.False(tt, ok)
		assert.Equal(tt, "", url)
		assert.Equal(tt, 0, client.GetQueueURLCount)
	})

	t.Run("empty queue name is absent", func(tt *testing.T) {
		svc, client, _ := newQueueService(tt)

		_, ok := svc.ResolveURL(ctx, "arn:aws:sqs:ap-northeast-1:123456789012:")
		assert.False(tt, ok)
		assert.Equal(tt, 0, client.GetQueueURLCount)
	})

	t.Run("short identifier uses default region", func(tt *testing.T) {
		client := mock.NewSQSClient()
		client.AddQueue("us-east-1", "123456789012", "short")
		svc := service.NewQueueService(client.Factory(), nil, "us-east-1")

		_, ok := svc.ResolveURL(ctx, "123456789012:short")
		assert.True(tt, ok)
		assert.Equal(tt, []string{"us-east-1"}, client.Regions)
	})

	t.Run("non-existent queue is not cached", func(tt *testing.T) {
		svc, client, _ := newQueueService(tt)
		arn := "arn:aws:sqs:ap-northeast-1:123456789012:later-queue"

		_, ok := svc.ResolveURL(ctx, arn)
		assert.False(tt, ok)
		_, ok = svc.ResolveURL(ctx, arn)
		assert.False(tt, ok)
		assert.Equal(tt, 2, client.GetQueueURLCount)

		// queue created after the first lookup
		url := client.AddQueue("ap-northeast-1", "123456789012", "later-queue")
		resolved, ok := svc.ResolveURL(ctx, arn)
		assert.True(tt, ok)
		assert.Equal(tt, url, resolved)
		assert.Equal(tt, 3, client.GetQueueURLCount)
	})

	t.Run("expired entry is looked up again", func(tt *testing.T) {
		client := mock.NewSQSClient()
		client.AddQueue("ap-northeast-1", "123456789012", "test-queue")
		cache := &urlCache{entries: map[string]string{}}
		svc := service.NewQueueService(client.Factory(), cache, "")

		_, ok := svc.ResolveURL(ctx, testQueueARN)
		require.True(tt, ok)
		_, ok = svc.ResolveURL(ctx, testQueueARN)
		require.True(tt, ok)
		assert.Equal(tt, 1, client.GetQueueURLCount)

		cache.expire()
		_, ok = svc.ResolveURL(ctx, testQueueARN)
		require.True(tt, ok)
		assert.Equal(tt, 2, client.GetQueueURLCount)
	})
}

// urlCache is a QueueURLCache whose entries expire only by expire()
type urlCache struct {
	entries map[string]string
}

func (x *urlCache) Get(key string) (string, bool) {
	v, ok := x.entries[key]
	return v, ok
}

func (x *urlCache) Add(key, value string) bool {
	x.entries[key] = value
	return false
}

func (x *urlCache) expire() {
	x.entries = map[string]string{}
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("delete by receipt handle", func(tt *testing.T) {
		svc, client, url := newQueueService(tt)

		require.NoError(tt, svc.DeleteMessage(ctx, testQueueARN, "handle-1"))
		require.Equal(tt, 1, len(client.DeleteInput))
		assert.Equal(tt, url, aws.StringValue(client.DeleteInput[0].QueueUrl))
		assert.Equal(tt, "handle-1", aws.StringValue(client.DeleteInput[0].ReceiptHandle))
	})

	t.Run("invalid receipt handle", func(tt *testing.T) {
		svc, client, _ := newQueueService(tt)
		client.DeleteErrors["expired"] = awserr.New(sqs.ErrCodeReceiptHandleIsInvalid, "expired", nil)

		err := svc.DeleteMessage(ctx, testQueueARN, "expired")
		assert.True(tt, errors.Is(err, batch.ErrReceiptHandleInvalid))
	})

	t.Run("empty receipt handle", func(tt *testing.T) {
		svc, client, _ := newQueueService(tt)

		err := svc.DeleteMessage(ctx, testQueueARN, "")
		assert.True(tt, errors.Is(err, batch.ErrMalformedRecord))
		assert.Equal(tt, 0, client.GetQueueURLCount)
	})

	t.Run("other error is wrapped", func(tt *testing.T) {
		svc, client, _ := newQueueService(tt)
		client.DeleteErrors["h"] = awserr.New("InternalError", "boom", nil)

		err := svc.DeleteMessage(ctx, testQueueARN, "h")
		require.Error(tt, err)
		assert.False(tt, errors.Is(err, batch.ErrReceiptHandleInvalid))
		assert.Contains(tt, err.Error(), "boom")
	})

	t.Run("unresolved queue", func(tt *testing.T) {
		svc, _, _ := newQueueService(tt)

		err := svc.DeleteMessage(ctx, "not-an-arn", "h")
		assert.True(tt, errors.Is(err, service.ErrQueueNotResolved))
	})
}

func TestChangeVisibility(t *testing.T) {
	ctx := context.Background()
	svc, client, _ := newQueueService(t)

	assert.True(t, svc.ChangeVisibility(ctx, testQueueARN, "handle-1", 30*time.Second))
	require.Equal(t, 1, len(client.VisibilityInput))
	assert.Equal(t, int64(30), aws.Int64Value(client.VisibilityInput[0].VisibilityTimeout))

	assert.False(t, svc.ChangeVisibility(ctx, "not-an-arn", "handle-1", time.Second))
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	svc, client, _ := newQueueService(t)

	msgID, err := svc.SendMessage(ctx, "https://sqs.eu-west-2.amazonaws.com/123456789012/q", map[string]string{"key": "v"})
	require.NoError(t, err)
	assert.NotEqual(t, "", msgID)
	require.Equal(t, 1, len(client.SendInput))
	assert.Equal(t, `{"key":"v"}`, aws.StringValue(client.SendInput[0].MessageBody))
	assert.Equal(t, []string{"eu-west-2"}, client.Regions)

	_, err = svc.SendMessage(ctx, "not-url", "x")
	assert.Error(t, err)
}

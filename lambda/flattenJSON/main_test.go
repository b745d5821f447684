package main_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/internal/testutil"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/m-mizutani/lakefront/lambda/flattenJSON"
)

func setup() (*mock.S3Client, handler.Arguments) {
	s3 := mock.NewS3Client()
	sqs := mock.NewSQSClient()
	sqs.AddQueue("ap-northeast-1", "123456789012", "test-queue")

	return s3, handler.Arguments{
		EnvVars: handler.EnvVars{
			AwsRegion:       "ap-northeast-1",
			ColumnSeparator: "__",
		},
		NewS3:         s3.Factory(),
		NewSQS:        sqs.Factory(),
		NewCloudWatch: mock.NewCloudWatchClient().Factory(),
	}
}

func TestFlattenJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("flatten nested object", func(tt *testing.T) {
		s3, args := setup()
		s3.Put("src", "k1", []byte(`{"user":{"name":"blue","tags":["a","b"]},"n":1}`), map[string]string{"table": "t1"})

		args.Event = testutil.EncapBySQS(models.FlattenQueue{BucketName: "src", Key: "k1", TargetBucket: "dst"})
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)

		obj := s3.Get("dst", "k1")
		require.NotNil(tt, obj)
		assert.JSONEq(tt, `{"user__name":"blue","user__tags__0":"a","user__tags__1":"b","n":1}`, string(obj.Body))
		assert.Equal(tt, "t1", obj.Metadata["table"])
	})

	t.Run("custom separator", func(tt *testing.T) {
		s3, args := setup()
		args.ColumnSeparator = "."
		s3.Put("src", "k2", []byte(`{"a":{"b":true}}`), nil)

		args.Event = testutil.EncapBySQS(models.FlattenQueue{BucketName: "src", Key: "k2", TargetBucket: "dst"})
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)
		assert.JSONEq(tt, `{"a.b":true}`, string(s3.Get("dst", "k2").Body))
	})

	t.Run("invalid input is dropped", func(tt *testing.T) {
		s3, args := setup()
		s3.Put("src", "broken", []byte(`{"a":`), nil)
		s3.Put("src", "list", []byte(`[1,2]`), nil)

		args.Event = testutil.EncapBySQS(
			models.FlattenQueue{BucketName: "src", Key: "broken", TargetBucket: "dst"},
			models.FlattenQueue{BucketName: "src", Key: "list", TargetBucket: "dst"},
			models.FlattenQueue{BucketName: "src", Key: "nothing", TargetBucket: "dst"},
			models.FlattenQueue{BucketName: "src", Key: "broken"},
		)
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)
		assert.Equal(tt, 0, len(s3.Keys("dst")))
	})

	t.Run("results are accumulated", func(tt *testing.T) {
		s3, args := setup()
		s3.Put("src", "k1", []byte(`{"a":1}`), nil)
		s3.Put("src", "k2", []byte(`{"a":1,"b":2}`), nil)

		args.Event = testutil.EncapBySQS(
			models.FlattenQueue{BucketName: "src", Key: "k1", TargetBucket: "dst"},
			models.FlattenQueue{BucketName: "src", Key: "k2", TargetBucket: "dst"},
			"not json",
		)
		_, err := main.Handler(ctx, args)
		assert.Equal(tt, batch.ErrPartialBatchFailure, err)
		assert.Equal(tt, 2, len(s3.Keys("dst")))
	})
}

package main_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/internal/testutil"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/m-mizutani/lakefront/lambda/redriveRecords"
)

func setup() (*mock.SQSClient, string, handler.Arguments) {
	sqs := mock.NewSQSClient()
	sqs.AddQueue("ap-northeast-1", "123456789012", "test-queue")
	url := sqs.AddQueue("ap-northeast-1", "123456789012", "retry-queue")

	return sqs, url, handler.Arguments{
		EnvVars: handler.EnvVars{
			AwsRegion:       "ap-northeast-1",
			RedriveQueueURL: url,
		},
		NewSQS:        sqs.Factory(),
		NewCloudWatch: mock.NewCloudWatchClient().Factory(),
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestRedriveRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("unwrap SNS event", func(tt *testing.T) {
		sqs, url, args := setup()
		snsEvent := events.SNSEvent{
			Records: []events.SNSEventRecord{
				{
					SNS:         events.SNSEntity{Message: mustJSON(tt, models.IngestQueue{BucketName: "blue", Key: "five"})},
					EventSource: "aws:sns",
				},
				{
					SNS:         events.SNSEntity{Message: mustJSON(tt, models.IngestQueue{BucketName: "orange", Key: "six"})},
					EventSource: "aws:sns",
				},
			},
		}

		args.Event = testutil.EncapBySQS(mustJSON(tt, snsEvent))
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)

		require.Equal(tt, 2, len(sqs.SendInput))
		assert.Equal(tt, url, aws.StringValue(sqs.SendInput[0].QueueUrl))
		assert.JSONEq(tt, `{"bucketName":"blue","key":"five"}`, aws.StringValue(sqs.SendInput[0].MessageBody))
		assert.JSONEq(tt, `{"bucketName":"orange","key":"six"}`, aws.StringValue(sqs.SendInput[1].MessageBody))
	})

	t.Run("unwrap SQS event", func(tt *testing.T) {
		sqs, _, args := setup()
		sqsEvent := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: `{"queryTemplate":"SELECT 1"}`, EventSource: "aws:sqs"},
			},
		}

		args.Event = testutil.EncapBySQS(mustJSON(tt, sqsEvent))
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)

		require.Equal(tt, 1, len(sqs.SendInput))
		assert.JSONEq(tt, `{"queryTemplate":"SELECT 1"}`, aws.StringValue(sqs.SendInput[0].MessageBody))
	})

	t.Run("plain message is redriven as is", func(tt *testing.T) {
		sqs, _, args := setup()
		args.Event = testutil.EncapBySQS(models.QueryQueue{QueryTemplate: "SELECT 1"})
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)

		require.Equal(tt, 1, len(sqs.SendInput))
		assert.JSONEq(tt, `{"queryTemplate":"SELECT 1"}`, aws.StringValue(sqs.SendInput[0].MessageBody))
	})

	t.Run("not redriven without queue URL", func(tt *testing.T) {
		sqs, _, args := setup()
		args.RedriveQueueURL = ""
		args.Event = testutil.EncapBySQS(models.QueryQueue{QueryTemplate: "SELECT 1"})
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)
		assert.Equal(tt, 0, len(sqs.SendInput))
	})

	t.Run("broken inner message fails record", func(tt *testing.T) {
		sqs, _, args := setup()
		sqsEvent := events.SQSEvent{
			Records: []events.SQSMessage{{Body: `{broken`, EventSource: "aws:sqs"}},
		}

		args.Event = testutil.EncapBySQS(mustJSON(tt, sqsEvent), models.QueryQueue{QueryTemplate: "SELECT 1"})
		_, err := main.Handler(ctx, args)
		assert.Equal(tt, batch.ErrPartialBatchFailure, err)
		assert.Equal(tt, 1, len(sqs.SendInput))
		require.Equal(tt, 1, len(sqs.DeleteInput))
	})

	t.Run("send failure reports progress", func(tt *testing.T) {
		sqs, _, args := setup()
		repo := mock.NewMetaRepository()
		args.MetaRepo = repo
		sqs.SendErrors[1] = errors.New("throttled")

		snsEvent := events.SNSEvent{
			Records: []events.SNSEventRecord{
				{SNS: events.SNSEntity{Message: `{"key":"a"}`}, EventSource: "aws:sns"},
				{SNS: events.SNSEntity{Message: `{"key":"b"}`}, EventSource: "aws:sns"},
			},
		}
		args.Event = testutil.EncapBySQS(mustJSON(tt, snsEvent))

		_, err := main.Handler(ctx, args)
		assert.Equal(tt, batch.ErrPartialBatchFailure, err)
		require.Equal(tt, 1, len(sqs.SendInput))
		assert.JSONEq(tt, `{"key":"a"}`, aws.StringValue(sqs.SendInput[0].MessageBody))

		failed, err := repo.GetFailedRecords("lakefront")
		require.NoError(tt, err)
		require.Equal(tt, 1, len(failed))
		assert.Contains(tt, failed[0].Error, "after 1 of 2 messages")
		assert.Contains(tt, failed[0].Error, "throttled")
	})
}

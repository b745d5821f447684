package main_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/internal/testutil"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/emitter"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/m-mizutani/lakefront/lambda/athenaExecutor"
)

type testClients struct {
	athena *mock.AthenaClient
	events *mock.EventBridgeClient
	sqs    *mock.SQSClient
}

func setup() (*testClients, handler.Arguments) {
	clients := &testClients{
		athena: mock.NewAthenaClient(),
		events: mock.NewEventBridgeClient(),
		sqs:    mock.NewSQSClient(),
	}
	clients.sqs.AddQueue("ap-northeast-1", "123456789012", "test-queue")

	args := handler.Arguments{
		EnvVars: handler.EnvVars{
			AwsRegion:            "ap-northeast-1",
			AthenaWorkgroup:      "lakefront",
			AthenaOutputLocation: "s3://athena-output/",
			EventBus:             "default",
			EventSource:          "lakefront.athena",
			EventDetailType:      "event",
		},
		NewAthena:      clients.athena.Factory(),
		NewEventBridge: clients.events.Factory(),
		NewSQS:         clients.sqs.Factory(),
		NewCloudWatch:  mock.NewCloudWatchClient().Factory(),
	}
	return clients, args
}

func TestAthenaExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("render and execute query", func(tt *testing.T) {
		clients, args := setup()
		clients.athena.Pages = []*athena.ResultSet{
			mock.NewResultSet([]string{"user", "n"}, []string{"blue", "1"}, []string{"orange", "2"}),
		}

		args.Event = testutil.EncapBySQS(models.QueryQueue{
			QueryTemplate:  "SELECT user, n FROM {{ .table }} WHERE year = '{{ .year }}'",
			TemplateValues: map[string]interface{}{"table": "access", "year": "2021"},
		})
		_, err := main.Handler(ctx, args)
		require.NoError(tt, err)

		require.Equal(tt, 1, len(clients.athena.StartInput))
		input := clients.athena.StartInput[0]
		assert.Equal(tt, "SELECT user, n FROM access WHERE year = '2021'", aws.StringValue(input.QueryString))
		assert.Equal(tt, "lakefront", aws.StringValue(input.WorkGroup))
		assert.Equal(tt, "s3://athena-output/", aws.StringValue(input.ResultConfiguration.OutputLocation))

		require.Equal(tt, 1, len(clients.events.Entries))
		entry := clients.events.Entries[0]
		assert.Equal(tt, "lakefront.athena", aws.StringValue(entry.Source))

		var detail struct {
			State  emitter.State      `json:"state"`
			Result models.QueryResult `json:"result"`
		}
		require.NoError(tt, json.Unmarshal([]byte(aws.StringValue(entry.Detail)), &detail))
		assert.Equal(tt, emitter.StateSucceeded, detail.State)
		assert.Equal(tt, 2, detail.Result.RowsCount)
		assert.Equal(tt, "orange", detail.Result.Rows[1]["user"])
		assert.Equal(tt, "2", detail.Result.Rows[1]["n"])
	})

	t.Run("failed query emits failure and fails record", func(tt *testing.T) {
		clients, args := setup()
		clients.athena.States = []string{athena.QueryExecutionStateFailed}
		clients.athena.StateReason = "SYNTAX_ERROR"

		args.Event = testutil.EncapBySQS(models.QueryQueue{QueryTemplate: "SELEC 1"})
		_, err := main.Handler(ctx, args)
		assert.Equal(tt, batch.ErrPartialBatchFailure, err)

		require.Equal(tt, 1, len(clients.events.Entries))
		var detail struct {
			State  emitter.State         `json:"state"`
			Result emitter.FailureResult `json:"result"`
		}
		require.NoError(tt, json.Unmarshal([]byte(aws.StringValue(clients.events.Entries[0].Detail)), &detail))
		assert.Equal(tt, emitter.StateFailed, detail.State)
		assert.Contains(tt, detail.Result.Message, "SYNTAX_ERROR")
		assert.Equal(tt, 0, len(clients.sqs.DeleteInput))
	})

	t.Run("missing template value fails only the record", func(tt *testing.T) {
		clients, args := setup()
		clients.athena.Pages = []*athena.ResultSet{mock.NewResultSet([]string{"x"})}

		args.Event = testutil.EncapBySQS(
			models.QueryQueue{QueryTemplate: "SELECT 1 FROM {{ .table }}"},
			models.QueryQueue{QueryTemplate: "SELECT 1"},
		)
		_, err := main.Handler(ctx, args)
		assert.Equal(tt, batch.ErrPartialBatchFailure, err)

		assert.Equal(tt, []string{"SELECT 1"}, clients.athena.Queries())
		require.Equal(tt, 1, len(clients.sqs.DeleteInput))
		assert.Equal(tt, "handle-1", aws.StringValue(clients.sqs.DeleteInput[0].ReceiptHandle))
	})
}

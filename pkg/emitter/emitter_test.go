package emitter_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/internal/testutil"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/emitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableError struct{ table string }

func (x *tableError) Error() string { return "no such table: " + x.table }

func setup(ignoreFails bool) (*mock.EventBridgeClient, batch.Middleware) {
	client := mock.NewEventBridgeClient()
	svc := service.NewEventService(client.Factory(), "ap-northeast-1")
	mw := emitter.FromResult(svc, emitter.Options{
		Source:      "athena-executor",
		DetailType:  "query",
		IgnoreFails: ignoreFails,
	})
	return client, mw
}

func details(t *testing.T, client *mock.EventBridgeClient) []map[string]interface{} {
	var out []map[string]interface{}
	for _, entry := range client.Entries {
		var d map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(*entry.Detail), &d))
		out = append(out, d)
	}
	return out
}

func TestFromResult(t *testing.T) {
	ctx := context.Background()

	t.Run("emit succeeded result", func(tt *testing.T) {
		client, mw := setup(true)
		proc := func(ctx context.Context, record *batch.Record, prior batch.Results) (interface{}, error) {
			return map[string]int{"rowsCount": 2}, nil
		}

		resolver := batch.New(nil).OnRecord(proc, mw)
		_, err := resolver.Invoke(ctx, testutil.EncapBySQS(map[string]string{"queryTemplate": "SELECT 1"}))
		require.NoError(tt, err)

		d := details(tt, client)
		require.Equal(tt, 1, len(d))
		assert.Equal(tt, "SUCCEEDED", d[0]["state"])
		assert.Equal(tt, map[string]interface{}{"queryTemplate": "SELECT 1"}, d[0]["event"])
		assert.Equal(tt, map[string]interface{}{"rowsCount": 2.0}, d[0]["result"])
		assert.Equal(tt, "athena-executor", *client.Entries[0].Source)
		assert.Equal(tt, "query", *client.Entries[0].DetailType)
	})

	t.Run("emit failure and keep error", func(tt *testing.T) {
		client, mw := setup(true)
		procErr := &tableError{table: "t1"}
		proc := func(ctx context.Context, record *batch.Record, prior batch.Results) (interface{}, error) {
			return nil, procErr
		}

		wrapped := mw(proc)
		_, err := wrapped(ctx, &batch.Record{Payload: json.RawMessage(`{"a":1}`)}, nil)
		assert.Equal(tt, procErr, err)

		d := details(tt, client)
		require.Equal(tt, 1, len(d))
		assert.Equal(tt, "FAILED", d[0]["state"])
		assert.Equal(tt, map[string]interface{}{
			"error":   "tableError",
			"message": "no such table: t1",
		}, d[0]["result"])
	})

	t.Run("DetailError has own result", func(tt *testing.T) {
		client, mw := setup(true)
		proc := func(ctx context.Context, record *batch.Record, prior batch.Results) (interface{}, error) {
			return nil, emitter.NewDetailError("invalid column", map[string]string{"column_name": "x y"})
		}

		_, err := mw(proc)(ctx, &batch.Record{Payload: json.RawMessage(`{}`)}, nil)
		require.Error(tt, err)

		d := details(tt, client)
		require.Equal(tt, 1, len(d))
		assert.Equal(tt, map[string]interface{}{"column_name": "x y"}, d[0]["result"])
	})

	t.Run("emission failure is error unless ignored", func(tt *testing.T) {
		proc := func(ctx context.Context, record *batch.Record, prior batch.Results) (interface{}, error) {
			return "ok", nil
		}

		client, mw := setup(false)
		client.FailEntries = true
		_, err := mw(proc)(ctx, &batch.Record{Payload: json.RawMessage(`{}`)}, nil)
		assert.True(tt, errors.Is(err, emitter.ErrEmitFailed))

		client, mw = setup(true)
		client.FailEntries = true
		result, err := mw(proc)(ctx, &batch.Record{Payload: json.RawMessage(`{}`)}, nil)
		assert.NoError(tt, err)
		assert.Equal(tt, "ok", result)
	})
}

package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/lakefront/internal/repository"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/internal/util"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RecordHandler processes one record of a batch with Arguments
type RecordHandler func(ctx context.Context, args *Arguments, record *batch.Record, prior batch.Results) (interface{}, error)

// BatchResolver builds batch.Resolver for SQS triggered functions. Failed
// records are saved to the failure index (if META_TABLE_NAME is set) and their
// visibility is extended (if FAILED_RECORD_VISIBILITY_TIMEOUT is set). Batch
// report is published as CloudWatch metrics.
func (x *Arguments) BatchResolver(handler RecordHandler, mws ...batch.Middleware) *batch.Resolver {
	proc := func(ctx context.Context, record *batch.Record, prior batch.Results) (interface{}, error) {
		return handler(ctx, x, record, prior)
	}

	var hooks []batch.FailedRecordHook
	if x.MetaService().FailureIndexEnabled() {
		hooks = append(hooks, x.failureIndexHook)
	}
	if x.FailedRecordVisibilityTimeout > 0 {
		hooks = append(hooks, x.visibilityHook)
	}

	resolver := batch.New(x.QueueService()).
		OnRecord(proc, mws...).
		OnReport(x.publishReport)

	if len(hooks) > 0 {
		resolver.OnFailedRecord(batch.Hooks(hooks...))
	}

	return resolver
}

func (x *Arguments) failureIndexHook(ctx context.Context, record *batch.Record, prior batch.Results) error {
	failed := &repository.FailedRecord{
		Function: x.Function(),
		Body:     string(record.Raw),
		FailedAt: time.Now().UTC().UnixNano(),
	}
	if record.Err() != nil {
		failed.Error = record.Err().Error()
	}
	if record.SQS != nil {
		failed.MessageID = record.SQS.MessageId
		failed.QueueARN = record.SQS.EventSourceARN
		failed.Body = record.SQS.Body
	}

	if err := x.MetaService().PutFailedRecord(failed); err != nil {
		return err
	}

	Logger.WithFields(logrus.Fields{
		"function":  failed.Function,
		"messageId": failed.MessageID,
	}).Debug("Saved failed record")
	return nil
}

// visibilityHook delays redelivery of failed SQS message exponentially by receive count
func (x *Arguments) visibilityHook(ctx context.Context, record *batch.Record, prior batch.Results) error {
	if record.SQS == nil || record.SQS.ReceiptHandle == "" || record.SQS.EventSourceARN == "" {
		return nil
	}

	count, err := strconv.Atoi(record.SQS.Attributes["ApproximateReceiveCount"])
	if err != nil {
		count = 1
	}

	base := time.Duration(x.FailedRecordVisibilityTimeout) * time.Second
	timeout := util.ExpBackoff(base, count, util.MaxVisibilityTimeout)

	if !x.QueueService().ChangeVisibility(ctx, record.SQS.EventSourceARN, record.SQS.ReceiptHandle, timeout) {
		return errors.Errorf("Failed to change visibility of message %s", record.SQS.MessageId)
	}
	return nil
}

func (x *Arguments) publishReport(ctx context.Context, report batch.Report) {
	x.MetricService().PutMetrics(ctx,
		service.Metric{Name: "RecordsReceived", Value: float64(report.Received)},
		service.Metric{Name: "RecordsFailed", Value: float64(report.Failed)},
		service.Metric{Name: "RecordsDeleted", Value: float64(report.Deleted)},
	)
}

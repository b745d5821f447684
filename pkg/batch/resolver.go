package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/lakefront/internal"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = internal.Logger

// RecordProcessor handles one record. prior has results of previous
// successful records in the same batch and must not be modified. A nil result
// is not added to Results of following records.
type RecordProcessor func(ctx context.Context, record *Record, prior Results) (interface{}, error)

// FailedRecordHook is called once for each failed record. Its error is logged
// and discarded.
type FailedRecordHook func(ctx context.Context, record *Record, prior Results) error

// QueueClient deletes a message from a queue identified by ARN.
type QueueClient interface {
	DeleteMessage(ctx context.Context, queueARN, receiptHandle string) error
}

// Report is a summary of one batch invocation.
type Report struct {
	Received  int `json:"received"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Deleted   int `json:"deleted"`
}

// Reporter receives Report after a batch is resolved.
type Reporter func(ctx context.Context, report Report)

// Resolver runs RecordProcessor over a Lambda batch and resolves partial failure.
type Resolver struct {
	queue          QueueClient
	onRecord       RecordProcessor
	onFailedRecord FailedRecordHook
	reporters      []Reporter
}

// New is constructor of Resolver. queue is used to delete successful records
// when the batch partially fails.
func New(queue QueueClient) *Resolver {
	return &Resolver{queue: queue}
}

// OnRecord registers RecordProcessor wrapped by middlewares. The first
// middleware is the outermost one.
func (x *Resolver) OnRecord(proc RecordProcessor, mws ...Middleware) *Resolver {
	x.onRecord = Chain(proc, mws...)
	return x
}

// OnFailedRecord registers a hook for failed records.
func (x *Resolver) OnFailedRecord(hook FailedRecordHook) *Resolver {
	x.onFailedRecord = hook
	return x
}

// OnReport adds a Reporter.
func (x *Resolver) OnReport(reporter Reporter) *Resolver {
	x.reporters = append(x.reporters, reporter)
	return x
}

// Invoke handles a Lambda event. It returns nil result and nil error when all
// records succeeded, and ErrPartialBatchFailure when at least one record failed.
// An event without Records is processed as one record and the result of
// RecordProcessor is returned as is.
func (x *Resolver) Invoke(ctx context.Context, event json.RawMessage) (interface{}, error) {
	if x.onRecord == nil {
		return nil, ErrNoRecordProcessor
	}

	records, ok := parseEvent(event)
	if !ok {
		logger.Debug("Not a batch event, passing through the raw event")
		rec := &Record{Kind: KindEvent, Payload: event, Raw: event}
		return x.onRecord(ctx, rec, Results{})
	}

	var results Results
	for _, record := range records {
		x.process(ctx, record, &results)
	}

	report := Report{Received: len(records)}
	var succeeded []*Record
	for _, record := range records {
		if !record.Failed() {
			succeeded = append(succeeded, record)
		}
	}
	report.Succeeded = len(succeeded)
	report.Failed = report.Received - report.Succeeded

	logger.WithFields(logrus.Fields{
		"received":  report.Received,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Infof("Received %d record(s). %d successfully processed. Encountered %d error(s).",
		report.Received, report.Succeeded, report.Failed)

	if report.Failed == 0 {
		logger.Info("Successfully processed all messages from the batch")
		x.report(ctx, report)
		return nil, nil
	}

	report.Deleted = x.deleteRecords(ctx, succeeded)
	x.report(ctx, report)

	logger.WithField("report", report).Info("Encountered partial batch failure, purposely exiting with error")
	return nil, ErrPartialBatchFailure
}

func (x *Resolver) process(ctx context.Context, record *Record, results *Results) {
	logger.WithFields(logrus.Fields{
		"index": record.Index,
		"kind":  record.Kind.String(),
	}).Debug("Processing record")

	// The processor receives a capped slice, append by processor never
	// overwrites results of this batch.
	prior := (*results)[:len(*results):len(*results)]

	if !record.Failed() {
		result, err := safeProcess(ctx, x.onRecord, record, prior)
		if err == nil {
			if result != nil {
				*results = append(*results, result)
			}
			return
		}
		record.markFailed(err)
	}

	logger.WithError(record.Err()).WithField("index", record.Index).Error("Failed to process record, ignored")

	if x.onFailedRecord != nil {
		if err := safeHook(ctx, x.onFailedRecord, record, prior); err != nil {
			logger.WithError(err).WithField("index", record.Index).Error("Unhandled failed-record hook error, ignored")
		} else {
			logger.WithField("index", record.Index).Debug("Called failed-record hook")
		}
	}
}

func (x *Resolver) deleteRecords(ctx context.Context, records []*Record) int {
	deleted := 0

	for _, record := range records {
		if !record.fromSQS() {
			continue
		}

		log := logger.WithFields(logrus.Fields{
			"index":     record.Index,
			"messageId": record.SQS.MessageId,
		})

		if x.queue == nil {
			log.Error("No queue client is configured, record can not be deleted")
			continue
		}

		if record.SQS.EventSourceARN == "" || record.SQS.ReceiptHandle == "" {
			log.Warn("Malformed record payload (no eventSourceARN or receiptHandle), ignored")
			continue
		}

		err := x.queue.DeleteMessage(ctx, record.SQS.EventSourceARN, record.SQS.ReceiptHandle)
		switch {
		case err == nil:
			deleted++
			log.Debug("Deleted record")
		case errors.Is(err, ErrReceiptHandleInvalid), errors.Is(err, ErrMalformedRecord):
			log.WithError(err).Warn("Malformed record payload, ignored")
		default:
			log.WithError(err).Error("Failed to delete message, ignored")
		}
	}

	return deleted
}

func (x *Resolver) report(ctx context.Context, report Report) {
	for _, reporter := range x.reporters {
		reporter(ctx, report)
	}
}

func safeProcess(ctx context.Context, proc RecordProcessor, record *Record, prior Results) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic in record processor: %v", r)
		}
	}()
	return proc(ctx, record, prior)
}

func safeHook(ctx context.Context, hook FailedRecordHook, record *Record, prior Results) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in failed-record hook: %v", r)
		}
	}()
	return hook(ctx, record, prior)
}

package emitter

import (
	"context"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/pkg/errors"
)

var logger = internal.Logger

// State of processing in event detail
type State string

const (
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// ErrEmitFailed is returned when event can not be put and IgnoreFails is false
var ErrEmitFailed = errors.New("Failed to emit EventBridge event")

// Detail is emitted as EventBridge event detail
type Detail struct {
	State  State           `json:"state"`
	Event  json.RawMessage `json:"event"`
	Result interface{}     `json:"result"`
}

// FailureResult is result of Detail for failed processing
type FailureResult struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DetailError is error that has its own result for Detail
type DetailError struct {
	Message string
	Detail  interface{}
}

// NewDetailError is constructor of DetailError. detail can be nil.
func NewDetailError(msg string, detail interface{}) *DetailError {
	return &DetailError{Message: msg, Detail: detail}
}

func (x *DetailError) Error() string { return x.Message }

// Result returns Detail if set, else FailureResult
func (x *DetailError) Result() interface{} {
	if x.Detail != nil {
		return x.Detail
	}
	return &FailureResult{Error: "DetailError", Message: x.Message}
}

// Putter puts events to event bus
type Putter interface {
	Put(ctx context.Context, target service.EventTarget, details ...interface{}) bool
}

// Options of FromResult
type Options struct {
	Bus        string
	Source     string
	DetailType string

	// IgnoreFails makes processing succeed even if the event can not be put
	IgnoreFails bool
}

// FromResult is a middleware emitting result of RecordProcessor to EventBridge.
// Error of RecordProcessor is returned as is.
func FromResult(putter Putter, opts Options) batch.Middleware {
	target := service.EventTarget{
		Bus:        opts.Bus,
		Source:     opts.Source,
		DetailType: opts.DetailType,
	}

	return func(next batch.RecordProcessor) batch.RecordProcessor {
		return func(ctx context.Context, record *batch.Record, prior batch.Results) (interface{}, error) {
			result, err := next(ctx, record, prior)

			detail := &Detail{
				State:  StateSucceeded,
				Event:  recordEvent(record),
				Result: result,
			}
			if err != nil {
				detail.State = StateFailed
				detail.Result = toFailureResult(err)
			}

			logger.WithField("detail", detail).Debug("Attempting to emit an event to EventBridge")

			if !putter.Put(ctx, target, detail) && !opts.IgnoreFails {
				return nil, errors.Wrapf(ErrEmitFailed, "record %d", record.Index)
			}

			return result, err
		}
	}
}

func recordEvent(record *batch.Record) json.RawMessage {
	if record.Payload != nil {
		return record.Payload
	}
	return record.Raw
}

func toFailureResult(err error) interface{} {
	var derr *DetailError
	if errors.As(err, &derr) {
		return derr.Result()
	}

	return &FailureResult{
		Error:   errorName(errors.Cause(err)),
		Message: err.Error(),
	}
}

func errorName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "error"
	}
	return t.Name()
}

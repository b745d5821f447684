package batch

import (
	"bytes"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// EventSourceSQS is eventSource value of a record delivered from SQS
const EventSourceSQS = "aws:sqs"

// RecordKind distinguishes shapes of Record
type RecordKind int

const (
	// KindEvent is a whole Lambda event without Records list. Payload is the event itself.
	KindEvent RecordKind = iota
	// KindSQS is a SQS message. Payload is the message body.
	KindSQS
	// KindOther is a record from another event source. Payload is the raw record.
	KindOther
)

func (x RecordKind) String() string {
	switch x {
	case KindEvent:
		return "event"
	case KindSQS:
		return "sqs"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Record is one unit of RecordProcessor input.
type Record struct {
	Kind RecordKind

	// Payload is decoded data for RecordProcessor. It is nil when the record is
	// malformed.
	Payload json.RawMessage

	// Raw is the record as delivered by Lambda.
	Raw json.RawMessage

	// SQS is available only for KindSQS
	SQS *events.SQSMessage

	// Index is position of the record in the batch.
	Index int

	failed bool
	err    error
}

// Bind unmarshals Payload to v.
func (x *Record) Bind(v interface{}) error {
	if x.Payload == nil {
		return errors.Wrapf(ErrMalformedRecord, "record %d has no payload", x.Index)
	}

	if err := json.Unmarshal(x.Payload, v); err != nil {
		logger.WithField("raw", string(x.Payload)).Error("json.Unmarshal")
		return errors.Wrap(err, "Failed json.Unmarshal in Record.Bind")
	}
	return nil
}

// Failed returns true if processing the record failed in this invocation.
func (x *Record) Failed() bool { return x.failed }

// Err returns the error that made the record failed.
func (x *Record) Err() error { return x.err }

func (x *Record) markFailed(err error) {
	x.failed = true
	if x.err == nil {
		x.err = err
	}
}

// fromSQS returns true if the record can be deleted from its queue.
func (x *Record) fromSQS() bool {
	return x.Kind == KindSQS && x.SQS != nil
}

// Results is an ordered list of non-nil results of successful records.
type Results []interface{}

// Last returns the latest result, or nil.
func (x Results) Last() interface{} {
	if len(x) == 0 {
		return nil
	}
	return x[len(x)-1]
}

type recordSource struct {
	EventSource string `json:"eventSource"`
}

// parseEvent splits Lambda event into records. ok is false when the event
// does not have a non-empty Records list. The key is matched exactly, so
// lowercase "records" (e.g. Firehose transform events) is not a batch.
func parseEvent(raw json.RawMessage) ([]*Record, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, false
	}

	list, ok := envelope["Records"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(list), []byte("[")) {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil || len(items) == 0 {
		return nil, false
	}

	records := make([]*Record, len(items))
	for i, item := range items {
		records[i] = parseRecord(i, item)
	}

	return records, true
}

func parseRecord(idx int, raw json.RawMessage) *Record {
	rec := &Record{Index: idx, Raw: raw, Kind: KindOther}

	var src recordSource
	if err := json.Unmarshal(raw, &src); err != nil {
		rec.markFailed(errors.Wrapf(ErrMalformedRecord, "record %d is not an object", idx))
		return rec
	}

	if src.EventSource != EventSourceSQS {
		rec.Payload = raw
		return rec
	}

	rec.Kind = KindSQS
	var msg events.SQSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		rec.markFailed(errors.Wrapf(ErrMalformedRecord, "record %d is not a SQS message: %v", idx, err))
		return rec
	}
	rec.SQS = &msg

	body := []byte(msg.Body)
	if !json.Valid(body) {
		rec.markFailed(errors.Wrapf(ErrMalformedRecord, "body of message %s is not JSON", msg.MessageId))
		return rec
	}
	rec.Payload = body

	return rec
}

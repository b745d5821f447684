package batch

import "github.com/pkg/errors"

var (
	// ErrNoRecordProcessor is returned by Invoke when OnRecord was never called.
	ErrNoRecordProcessor = errors.New("Missing record handling configuration (OnRecord)")

	// ErrPartialBatchFailure is returned by Invoke after successful records are
	// deleted from their queue. Lambda then leaves the failed records to SQS
	// redelivery.
	ErrPartialBatchFailure = errors.New("Partial batch failure")

	// ErrMalformedRecord means the record can not be decoded or lacks a field
	// required to delete it.
	ErrMalformedRecord = errors.New("Malformed record payload")

	// ErrReceiptHandleInvalid means SQS does not accept the receipt handle any
	// more, e.g. the visibility timeout has already expired.
	ErrReceiptHandleInvalid = errors.New("Receipt handle is invalid")
)

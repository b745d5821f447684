// Package batch resolves partial failures of an SQS triggered Lambda batch.
//
// Lambda acknowledges an SQS batch as a whole: returning an error makes every
// message visible again, returning nil deletes all of them. Resolver runs a
// RecordProcessor for each record in delivery order, deletes only the records
// that succeeded and then returns ErrPartialBatchFailure so that SQS
// redelivers the failed remainder.
//
// A Lambda event without a Records list (e.g. direct invocation) is given to
// the RecordProcessor as a single record of KindEvent and its result is
// returned as is.
package batch

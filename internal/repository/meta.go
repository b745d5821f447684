package repository

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/guregu/dynamo"
	"github.com/pkg/errors"
)

const (
	partitionTTL     = time.Hour * 24 * 365
	failedRecordTTL  = time.Hour * 24 * 14
	partitionSortKey = "@"
)

// MetaRepository is interface of pipeline meta data store
type MetaRepository interface {
	HeadPartition(partitionKey string) (bool, error)
	PutPartition(partitionKey string) error
	PutFailedRecord(record *FailedRecord) error
	GetFailedRecords(function string) ([]*FailedRecord, error)
}

// MetaDynamoDB is implementation of MetaRepository
type MetaDynamoDB struct {
	table dynamo.Table
}

type metaBase struct {
	ExpiresAt int64  `dynamo:"expires_at"`
	PKey      string `dynamo:"pk"`
	SKey      string `dynamo:"sk"`
}

// FailedRecord is an index entry of a record that failed in a batch. It is
// written by failed-record hook for later inspection and replay.
type FailedRecord struct {
	metaBase
	Function  string `dynamo:"function" json:"function"`
	MessageID string `dynamo:"message_id" json:"message_id"`
	QueueARN  string `dynamo:"queue_arn" json:"queue_arn"`
	Body      string `dynamo:"body" json:"body"`
	Error     string `dynamo:"error" json:"error"`
	FailedAt  int64  `dynamo:"failed_at" json:"failed_at"`
}

// HashKey returns partition key of FailedRecord
func (x *FailedRecord) HashKey() interface{} {
	return toFailedRecordKey(x.Function)
}

// RangeKey returns sort key of FailedRecord. Same message overwrites its
// previous failure.
func (x *FailedRecord) RangeKey() interface{} {
	if x.MessageID != "" {
		return "message/" + x.MessageID
	}
	return fmt.Sprintf("event/%d", x.FailedAt)
}

// NewMetaDynamoDB is a constructor of MetaDynamoDB as MetaRepository
func NewMetaDynamoDB(region, tableName string) MetaRepository {
	db := dynamo.New(session.Must(session.NewSession()), &aws.Config{Region: aws.String(region)})
	table := db.Table(tableName)

	meta := MetaDynamoDB{
		table: table,
	}
	return &meta
}

func toPartitionKey(partition string) string {
	return "partition:" + partition
}

func toFailedRecordKey(function string) string {
	return "failure:" + function
}

// HeadPartition checks an existence of partition
func (x *MetaDynamoDB) HeadPartition(partitionKey string) (bool, error) {
	var result metaBase
	pkey := toPartitionKey(partitionKey)
	if err := x.table.Get("pk", pkey).Range("sk", dynamo.Equal, partitionSortKey).One(&result); err != nil {
		if err == dynamo.ErrNotFound {
			return false, nil
		}

		return false, errors.Wrapf(err, "Fail to get partition key: %s", pkey)
	}

	return true, nil
}

// PutPartition registers a partition. Registering an existing partition is not error.
func (x *MetaDynamoDB) PutPartition(partitionKey string) error {
	now := time.Now().UTC()
	pindex := metaBase{
		ExpiresAt: now.Add(partitionTTL).Unix(),
		PKey:      toPartitionKey(partitionKey),
		SKey:      partitionSortKey,
	}

	if err := x.table.Put(pindex).If("attribute_not_exists(pk)").Run(); err != nil {
		if isConditionalCheckErr(err) {
			return nil
		}
		return errors.Wrapf(err, "Fail to put parition key: %v", pindex)
	}

	return nil
}

// PutFailedRecord saves a failed record
func (x *MetaDynamoDB) PutFailedRecord(record *FailedRecord) error {
	if record.FailedAt == 0 {
		record.FailedAt = time.Now().UTC().UnixNano()
	}
	record.PKey = record.HashKey().(string)
	record.SKey = record.RangeKey().(string)
	record.ExpiresAt = time.Unix(0, record.FailedAt).Add(failedRecordTTL).Unix()

	if err := x.table.Put(record).Run(); err != nil {
		if isResourceNotFoundErr(err) {
			return errors.Wrapf(err, "Meta table is not found, failed record is not saved: %s", record.MessageID)
		}
		return errors.Wrapf(err, "Fail to put failed record: %s", record.MessageID)
	}

	return nil
}

// GetFailedRecords retrieves failed records of the function
func (x *MetaDynamoDB) GetFailedRecords(function string) ([]*FailedRecord, error) {
	var results []*FailedRecord
	if err := x.table.Get("pk", toFailedRecordKey(function)).All(&results); err != nil {
		if err == dynamo.ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "Fail to get failed records of %s", function)
	}

	return results, nil
}

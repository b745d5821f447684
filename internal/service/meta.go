package service

import (
	"sync"

	"github.com/m-mizutani/lakefront/internal/repository"
	"github.com/pkg/errors"
)

// ErrMetaNotConfigured is returned by failure index operations without MetaRepository
var ErrMetaNotConfigured = errors.New("Meta repository is not configured")

// MetaService is accessor of MetaRepository. repo can be nil, then partitions
// are cached only in memory and failure index is disabled.
type MetaService struct {
	repo              repository.MetaRepository
	mutex             sync.Mutex
	cachePartitionKey map[string]bool
}

// NewMetaService is constructor of MetaService
func NewMetaService(repo repository.MetaRepository) *MetaService {
	return &MetaService{
		repo:              repo,
		cachePartitionKey: make(map[string]bool),
	}
}

// HeadPartition checks an existance of partition and cache the result.
func (x *MetaService) HeadPartition(partitionKey string) (bool, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if exists, ok := x.cachePartitionKey[partitionKey]; ok && exists {
		return exists, nil
	}
	if x.repo == nil {
		return false, nil
	}

	exists, err := x.repo.HeadPartition(partitionKey)
	if err != nil {
		return false, err
	}
	x.cachePartitionKey[partitionKey] = exists
	return exists, nil
}

// PutPartition register an existance of partition and cache the result.
func (x *MetaService) PutPartition(partitionKey string) error {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if x.repo != nil {
		if err := x.repo.PutPartition(partitionKey); err != nil {
			return err
		}
	}
	x.cachePartitionKey[partitionKey] = true
	return nil
}

// FailureIndexEnabled returns true if failed records can be saved
func (x *MetaService) FailureIndexEnabled() bool {
	return x.repo != nil
}

// PutFailedRecord saves a record that failed in a batch
func (x *MetaService) PutFailedRecord(record *repository.FailedRecord) error {
	if x.repo == nil {
		return ErrMetaNotConfigured
	}
	return x.repo.PutFailedRecord(record)
}

// GetFailedRecords returns failed records of the function
func (x *MetaService) GetFailedRecords(function string) ([]*repository.FailedRecord, error) {
	if x.repo == nil {
		return nil, ErrMetaNotConfigured
	}
	return x.repo.GetFailedRecords(function)
}

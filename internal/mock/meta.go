package mock

import (
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/lakefront/internal/repository"
)

// MetaRepository is on memory mock of repository.MetaRepository
type MetaRepository struct {
	mutex        sync.Mutex
	partitionMap map[string]bool
	failureMap   map[string]map[string]*repository.FailedRecord
}

// NewMetaRepository creates an empty MetaRepository mock
func NewMetaRepository() *MetaRepository {
	return &MetaRepository{
		partitionMap: make(map[string]bool),
		failureMap:   make(map[string]map[string]*repository.FailedRecord),
	}
}

func (x *MetaRepository) HeadPartition(partitionKey string) (bool, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if exists, ok := x.partitionMap[partitionKey]; ok {
		return exists, nil
	}
	return false, nil
}

func (x *MetaRepository) PutPartition(partitionKey string) error {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.partitionMap[partitionKey] = true
	return nil
}

func (x *MetaRepository) PutFailedRecord(record *repository.FailedRecord) error {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if record.FailedAt == 0 {
		record.FailedAt = time.Now().UTC().UnixNano()
	}

	records, ok := x.failureMap[record.Function]
	if !ok {
		records = make(map[string]*repository.FailedRecord)
		x.failureMap[record.Function] = records
	}

	copied := *record
	records[record.RangeKey().(string)] = &copied
	return nil
}

func (x *MetaRepository) GetFailedRecords(function string) ([]*repository.FailedRecord, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	var results []*repository.FailedRecord
	for _, r := range x.failureMap[function] {
		copied := *r
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].FailedAt < results[j].FailedAt
	})

	return results, nil
}

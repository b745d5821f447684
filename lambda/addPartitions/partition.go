package main

import (
	"context"

	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// inherit fills empty fields of q by the latest partition in the batch
func inherit(q *models.PartitionQueue, prior batch.Results, defaultDB string) {
	if q.TableName == "" {
		q.TableName = q.Table
	}

	for i := len(prior) - 1; i >= 0; i-- {
		last, ok := prior[i].(*models.PartitionResult)
		if !ok || last == nil {
			continue
		}

		if q.Database == "" {
			q.Database = last.Database
		}
		if q.TableName == "" {
			q.TableName = last.TableName
		}
		// location and keys describe one partition and are inherited together
		if q.Location == "" && len(q.Keys) == 0 {
			q.Location = last.Location
			q.Keys = last.Keys
		}
		break
	}

	if q.Database == "" {
		q.Database = defaultDB
	}
}

func addPartition(ctx context.Context, args *handler.Arguments, record *batch.Record, prior batch.Results) (interface{}, error) {
	var q models.PartitionQueue
	if err := record.Bind(&q); err != nil {
		return nil, err
	}
	inherit(&q, prior, args.AthenaDatabase)

	if q.TableName == "" || q.Location == "" {
		return nil, errors.Wrapf(batch.ErrMalformedRecord, "table_name and location are required: %v", q)
	}
	if len(q.Keys) == 0 {
		return nil, errors.Wrapf(batch.ErrMalformedRecord, "keys are required for %s", q.Location)
	}

	result := &models.PartitionResult{
		Database:  q.Database,
		TableName: q.TableName,
		Location:  q.Location,
		Keys:      q.Keys,
	}
	log := logger.WithFields(logrus.Fields{
		"table":    q.TableName,
		"location": q.Location,
	})

	meta := args.MetaService()
	if has, err := meta.HeadPartition(q.Location); err != nil {
		return nil, err
	} else if has {
		log.Debug("Partition already exists")
		return result, nil
	}

	query, err := service.AddPartitionQuery(q.Database, q.TableName, q.Keys, q.Location)
	if err != nil {
		return nil, errors.Wrap(batch.ErrMalformedRecord, err.Error())
	}

	exec, err := args.AthenaService().Execute(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "Fail to execute a partitioning query")
	}
	if _, err := exec.WaitForResult(ctx); err != nil {
		return nil, errors.Wrap(err, "Fail to create partition")
	}

	if err := meta.PutPartition(q.Location); err != nil {
		return nil, err
	}

	log.Info("Created partition")
	result.Created = true
	return result, nil
}

package main

import (
	"context"

	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
)

var logger = handler.Logger

func main() {
	handler.StartLambda(Handler)
}

// Handler is exported for testing
func Handler(ctx context.Context, args handler.Arguments) (interface{}, error) {
	return args.BatchResolver(addColumns).Invoke(ctx, args.Event)
}

func addColumns(ctx context.Context, args *handler.Arguments, record *batch.Record, prior batch.Results) (interface{}, error) {
	var q models.ColumnQueue
	if err := record.Bind(&q); err != nil {
		return nil, err
	}
	if len(q.Columns) == 0 {
		logger.WithField("queue", q).Debug("No column to add")
		return nil, nil
	}

	db := q.Database
	if db == "" {
		db = args.AthenaDatabase
	}

	query, err := service.AddColumnsQuery(db, q.Table, q.Columns)
	if err != nil {
		return nil, errors.Wrap(batch.ErrMalformedRecord, err.Error())
	}

	exec, err := args.AthenaService().Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	if _, err := exec.WaitForResult(ctx); err != nil {
		return nil, errors.Wrapf(err, "Fail to add columns to %s", q.Table)
	}

	logger.WithField("query", query).Info("Added columns")
	return &models.QueryResult{Query: query, Rows: []map[string]string{}}, nil
}

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

func executeQuery(ctx context.Context, args *handler.Arguments, record *batch.Record, prior batch.Results) (interface{}, error) {
	var q models.QueryQueue
	if err := record.Bind(&q); err != nil {
		return nil, err
	}
	if q.QueryTemplate == "" {
		return nil, errors.Wrap(batch.ErrMalformedRecord, "queryTemplate is required")
	}

	query, err := service.RenderQuery(q.QueryTemplate, q.TemplateValues)
	if err != nil {
		return nil, errors.Wrap(batch.ErrMalformedRecord, err.Error())
	}
	logger.WithField("query", query).Debug("Rendered query")

	exec, err := args.AthenaService().Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	rs, err := exec.WaitForResult(ctx)
	if err != nil {
		return nil, err
	}

	rows := service.RowsToMaps(rs)
	logger.WithFields(logrus.Fields{
		"query_id": exec.ID,
		"rows":     len(rows),
	}).Debug("Successfully executed query")

	return &models.QueryResult{
		Query:     query,
		RowsCount: len(rows),
		Rows:      rows,
	}, nil
}

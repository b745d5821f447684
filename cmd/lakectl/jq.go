package main

import (
	"github.com/itchyny/gojq"
	"github.com/pkg/errors"
)

// filterRows applies jq filter to rows. gojq accepts only generic JSON values,
// so rows are converted to []interface{} before running.
func filterRows(rows []map[string]string, filter string) ([]interface{}, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to parse jq filter: %s", filter)
	}

	input := make([]interface{}, len(rows))
	for i, row := range rows {
		m := make(map[string]interface{}, len(row))
		for k, v := range row {
			m[k] = v
		}
		input[i] = m
	}

	var results []interface{}
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, errors.Wrapf(err, "Fail to run jq filter: %s", filter)
		}
		results = append(results, v)
	}

	return results, nil
}

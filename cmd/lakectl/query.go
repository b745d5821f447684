package main

import (
	"context"
	"strings"

	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

type queryArguments struct {
	template       string
	values         cli.StringSlice
	workgroup      string
	outputLocation string
	timeout        int
	jq             string
}

func queryCommand(args *arguments) *cli.Command {
	var queryArgs queryArguments

	return &cli.Command{
		Name:  "query",
		Usage: "Run Athena query with template values",
		Action: func(c *cli.Context) error {
			return queryAction(c.Context, *args, &queryArgs)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "Query template such as SELECT * FROM {{ .table }}",
				Required:    true,
				Destination: &queryArgs.template,
			},
			&cli.StringSliceFlag{
				Name:        "value",
				Aliases:     []string{"v"},
				Usage:       "Template value as key=value",
				Destination: &queryArgs.values,
			},
			&cli.StringFlag{
				Name:        "workgroup",
				Aliases:     []string{"w"},
				Usage:       "Athena workgroup",
				EnvVars:     []string{"ATHENA_WORKGROUP"},
				Destination: &queryArgs.workgroup,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output S3 path such as s3://my-bucket/out",
				EnvVars:     []string{"ATHENA_OUTPUT_LOCATION"},
				Destination: &queryArgs.outputLocation,
			},
			&cli.IntFlag{
				Name:        "timeout",
				Usage:       "Query timeout in seconds",
				Value:       60,
				Destination: &queryArgs.timeout,
			},
			&cli.StringFlag{
				Name:        "jq",
				Aliases:     []string{"j"},
				Usage:       "jq filter applied to result rows",
				Destination: &queryArgs.jq,
			},
		},
	}
}

func parseValues(pairs []string) (map[string]interface{}, error) {
	values := map[string]interface{}{}
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, errors.Errorf("Invalid template value (key=value is required): %s", pair)
		}
		values[kv[0]] = kv[1]
	}
	return values, nil
}

func queryAction(ctx context.Context, args arguments, queryArgs *queryArguments) error {
	values, err := parseValues(queryArgs.values.Value())
	if err != nil {
		return err
	}

	query, err := service.RenderQuery(queryArgs.template, values)
	if err != nil {
		return err
	}

	hargs := args.handlerArgs()
	hargs.AthenaWorkgroup = queryArgs.workgroup
	hargs.AthenaOutputLocation = queryArgs.outputLocation
	hargs.AthenaQueryTimeout = queryArgs.timeout

	logger.WithField("query", query).Info("Run query")
	exec, err := hargs.AthenaService().Execute(ctx, query)
	if err != nil {
		return err
	}

	rs, err := exec.WaitForResult(ctx)
	if err != nil {
		return err
	}

	rows := service.RowsToMaps(rs)
	if queryArgs.jq == "" {
		printResult(rows)
		return nil
	}

	filtered, err := filterRows(rows, queryArgs.jq)
	if err != nil {
		return err
	}
	for _, v := range filtered {
		printResult(v)
	}
	return nil
}

package main

import (
	"time"

	"github.com/m-mizutani/lakefront/internal/repository"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

type failuresArguments struct {
	tableName string
	function  string
}

type failureView struct {
	MessageID string
	QueueARN  string
	FailedAt  time.Time
	Error     string
	Body      string
}

func failuresCommand(args *arguments) *cli.Command {
	var failArgs failuresArguments

	return &cli.Command{
		Name:  "failures",
		Usage: "List failed records of a function saved in the meta table",
		Action: func(c *cli.Context) error {
			if failArgs.tableName == "" {
				return errors.New("--table is required")
			}

			repo := repository.NewMetaDynamoDB(args.Region, failArgs.tableName)
			records, err := repo.GetFailedRecords(failArgs.function)
			if err != nil {
				return err
			}

			views := make([]*failureView, len(records))
			for i, r := range records {
				views[i] = &failureView{
					MessageID: r.MessageID,
					QueueARN:  r.QueueARN,
					FailedAt:  time.Unix(0, r.FailedAt).UTC(),
					Error:     r.Error,
					Body:      r.Body,
				}
			}
			printResult(views)
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "table",
				Aliases:     []string{"t"},
				Usage:       "DynamoDB meta table name",
				EnvVars:     []string{"META_TABLE_NAME"},
				Destination: &failArgs.tableName,
			},
			&cli.StringFlag{
				Name:        "function",
				Aliases:     []string{"f"},
				Usage:       "Function name",
				Required:    true,
				Destination: &failArgs.function,
			},
		},
	}
}

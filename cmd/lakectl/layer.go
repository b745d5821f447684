package main

import (
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

func layerCommand(args *arguments) *cli.Command {
	return &cli.Command{
		Name:      "layer",
		Usage:     "Show the latest version ARN of Lambda layer",
		ArgsUsage: "LAYER_NAME_OR_ARN",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("LAYER_NAME_OR_ARN is required")
			}

			arn, err := args.handlerArgs().LayerService().LatestVersionARN(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			printResult(arn)
			return nil
		},
	}
}

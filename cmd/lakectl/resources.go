package main

import (
	"github.com/aws/aws-sdk-go/aws"
	cli "github.com/urfave/cli/v2"
)

func resourcesCommand(args *arguments) *cli.Command {
	return &cli.Command{
		Name:  "resources",
		Usage: "Show resources of the stack",
		Action: func(c *cli.Context) error {
			resources, err := args.describeStack()
			if err != nil {
				return err
			}

			out := map[string]string{}
			for id, rsc := range resources {
				out[id] = aws.StringValue(rsc.ResourceType) + " " + aws.StringValue(rsc.PhysicalResourceId)
			}
			printResult(out)
			return nil
		},
	}
}

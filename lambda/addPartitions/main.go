package main

import (
	"context"

	"github.com/m-mizutani/lakefront/pkg/handler"
)

var logger = handler.Logger

func main() {
	handler.StartLambda(Handler)
}

// Handler is exported for testing
func Handler(ctx context.Context, args handler.Arguments) (interface{}, error) {
	return args.BatchResolver(addPartition).Invoke(ctx, args.Event)
}

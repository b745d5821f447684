package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/lakefront/pkg/api"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/sirupsen/logrus"
)

var logger = handler.Logger

func main() {
	gin.SetMode(gin.ReleaseMode)
	handler.StartLambda(Handler)
}

// Handler is exported for testing
func Handler(ctx context.Context, args handler.Arguments) (interface{}, error) {
	var req events.APIGatewayProxyRequest
	if err := args.BindEvent(&req); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"path":   req.Path,
		"method": req.HTTPMethod,
	}).Debug("Received API request")

	return ginadapter.New(api.NewRouter(&args)).ProxyWithContext(ctx, req)
}

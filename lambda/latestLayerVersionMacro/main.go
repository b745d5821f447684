package main

import (
	"context"
	"fmt"

	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = handler.Logger

const (
	msgMissingLayerName   = `Missing mandatory "LayerName" parameter.`
	msgLayerNotFound      = "Lambda layer does not exist."
	msgInvalidLayerName   = "Invalid layer name."
	msgUnexpectedResponse = "Unexpected response from the Lambda API."
	msgUnhandled          = "Unhandled exception."
)

func main() {
	handler.StartLambda(Handler)
}

// Handler is exported for testing. It always returns MacroResponse and errors
// are reported by Status and ErrorMessage.
func Handler(ctx context.Context, args handler.Arguments) (interface{}, error) {
	var req models.MacroRequest
	if err := args.BindEvent(&req); err != nil {
		logger.WithError(err).Error("Invalid macro request")
		return &models.MacroResponse{
			Status:       models.MacroStatusFailed,
			ErrorMessage: msgMissingLayerName,
		}, nil
	}

	return latestLayerVersion(ctx, &args, &req), nil
}

func latestLayerVersion(ctx context.Context, args *handler.Arguments, req *models.MacroRequest) *models.MacroResponse {
	resp := &models.MacroResponse{
		RequestID: req.RequestID,
		Status:    models.MacroStatusFailed,
	}
	log := logger.WithField("request_id", req.RequestID)

	param, ok := req.Params["LayerName"]
	if !ok || param == nil {
		log.WithField("params", req.Params).Error("Missing event parameter LayerName")
		resp.ErrorMessage = msgMissingLayerName
		return resp
	}
	name := fmt.Sprint(param)

	arn, err := args.LayerService().LatestVersionARN(ctx, name)
	if err != nil {
		log = log.WithFields(logrus.Fields{"layer": name, "error": err})
		switch {
		case errors.Is(err, service.ErrLayerNotFound):
			log.Warn("Lambda layer does not exist")
			resp.ErrorMessage = msgLayerNotFound
		case errors.Is(err, service.ErrInvalidLayerName):
			log.Warn("Failed to get a lambda layer version")
			resp.ErrorMessage = msgInvalidLayerName
		case errors.Is(err, service.ErrUnexpectedResponse):
			log.Error("Received unexpected response from the Lambda API")
			resp.ErrorMessage = msgUnexpectedResponse
		default:
			log.Error("Unhandled exception getting the lambda layer versions")
			resp.ErrorMessage = msgUnhandled
		}
		return resp
	}

	resp.Status = models.MacroStatusSuccess
	resp.Fragment = arn
	return resp
}

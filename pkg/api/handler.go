package api

import (
	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/sirupsen/logrus"
)

// Logger can be replaced by a local server
var Logger = handler.Logger

// Response is
type Response struct {
	Code    int
	Message interface{}
}

type apiHandler func(args *handler.Arguments, c *gin.Context) (*Response, Error)

func sendResponse(c *gin.Context, resp *Response, err Error) {
	var code int
	if resp != nil {
		code = resp.Code
	}

	Logger.WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetHeader("x-request-id"),
		"ipaddr":     c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
		"resp_code":  code,
		"error":      err,
	}).Info("Audit log")

	if err != nil {
		Logger.WithFields(logrus.Fields{
			"error":  err,
			"params": c.Params,
			"url":    c.Request.URL,
		}).Error("Request failed")
		c.JSON(err.Code(), gin.H{"message": err.Message()})
	} else {
		c.JSON(resp.Code, resp.Message)
	}
}

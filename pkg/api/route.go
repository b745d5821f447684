package api

import (
	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/lakefront/pkg/handler"
)

// SetupRoute binds ingest API to r. args is shared by all requests.
func SetupRoute(r *gin.RouterGroup, args *handler.Arguments) {
	route := func(hdlr apiHandler) gin.HandlerFunc {
		return func(c *gin.Context) {
			resp, err := hdlr(args, c)
			sendResponse(c, resp, err)
		}
	}

	r.POST("/v1/tables/:table/records", route(postRecord))
}

// NewRouter creates gin engine with ingest API routes
func NewRouter(args *handler.Arguments) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	SetupRoute(r.Group(""), args)
	return r
}

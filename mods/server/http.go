package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *svr) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if s.conf.Http.EnableCORS {
		corsConf := cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}
		r.Use(cors.New(corsConf))
	}

	r.GET("/db/query", s.handleQuery)
	r.POST("/db/query", s.handleQuery)
	r.POST("/db/execute", s.handleExecute)
	r.GET("/db/ping", s.handlePing)

	if s.hbase != nil {
		r.POST("/hbase/tables", s.handleCreateTable)
		r.GET("/hbase/tables/:table/exists", s.handleTableExists)
		r.GET("/hbase/tables/:table/schema", s.handleTableSchema)
		r.POST("/hbase/tables/:table/cells", s.handleWriteCell)
	}
	return r
}

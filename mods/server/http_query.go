package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pqsgate/pqsgate/mods/msg"
	"github.com/pqsgate/pqsgate/mods/phoenix"
)

func (s *svr) handleQuery(ctx *gin.Context) {
	rsp := &msg.QueryResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	req := &msg.QueryRequest{}
	format := "json"
	if ctx.Request.Method == http.MethodPost {
		contentType := ctx.ContentType()
		if contentType == "application/json" {
			if err := ctx.Bind(req); err != nil {
				rsp.Reason = err.Error()
				ctx.JSON(http.StatusBadRequest, rsp)
				return
			}
		} else if contentType == "application/x-www-form-urlencoded" {
			req.SqlText = ctx.PostForm("q")
			if f := ctx.PostForm("format"); f != "" {
				format = f
			}
		} else {
			rsp.Reason = fmt.Sprintf("unsupported content-type: %s", contentType)
			ctx.JSON(http.StatusBadRequest, rsp)
			return
		}
	} else {
		req.SqlText = ctx.Query("q")
		if f := ctx.Query("format"); f != "" {
			format = f
		}
	}
	if format != "json" {
		rsp.Reason = fmt.Sprintf("unsupported format: %s", format)
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}
	if len(req.SqlText) == 0 {
		rsp.Reason = "empty sql"
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}

	result, err := s.execute(ctx, &phoenix.Statement{SQL: req.SqlText, Kind: phoenix.StatementQuery})
	if err != nil {
		rsp.Reason = err.Error()
		rsp.Suggestion = suggestionOf(err)
		ctx.JSON(http.StatusInternalServerError, rsp)
		return
	}

	rsp.Success = true
	rsp.Reason = msg.RowsMessage(result.RowCount())
	rsp.Data = msg.NewQueryData(result)
	ctx.JSON(http.StatusOK, rsp)
}

func (s *svr) handleExecute(ctx *gin.Context) {
	rsp := &msg.QueryResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	req := &msg.QueryRequest{}
	if err := ctx.Bind(req); err != nil {
		rsp.Reason = err.Error()
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}
	if len(req.SqlText) == 0 {
		rsp.Reason = "empty sql"
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}

	result, err := s.execute(ctx, &phoenix.Statement{SQL: req.SqlText, Kind: phoenix.StatementExec})
	if err != nil {
		rsp.Reason = err.Error()
		rsp.Suggestion = suggestionOf(err)
		ctx.JSON(http.StatusInternalServerError, rsp)
		return
	}

	rsp.Success = true
	rsp.Reason = "executed"
	rsp.Data = msg.NewQueryData(result)
	ctx.JSON(http.StatusOK, rsp)
}

func (s *svr) handlePing(ctx *gin.Context) {
	rsp := &msg.QueryResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	if err := s.conn.Open(ctx.Request.Context()); err != nil {
		rsp.Reason = err.Error()
		rsp.Suggestion = suggestionOf(err)
		ctx.JSON(http.StatusServiceUnavailable, rsp)
		return
	}
	rsp.Success = true
	rsp.Reason = fmt.Sprintf("%s via %s", s.conn.State(), s.conn.ActiveTransport())
	ctx.JSON(http.StatusOK, rsp)
}

// execute opens the connection lazily, then runs the statement on
// whichever transport the connection settled on.
func (s *svr) execute(ctx *gin.Context, stmt *phoenix.Statement) (*phoenix.TabularResult, error) {
	reqCtx := ctx.Request.Context()
	if s.conn.State() != phoenix.Open {
		if err := s.conn.Open(reqCtx); err != nil {
			return nil, err
		}
	}
	return s.conn.Execute(reqCtx, stmt)
}

func suggestionOf(err error) string {
	switch phoenix.FailureOf(err) {
	case phoenix.Unavailable:
		return "no usable transport, check the driver and protocol configuration"
	case phoenix.ConnectFailed:
		return "check that the query server is reachable and retry"
	case phoenix.ProtocolError:
		return "the query server response was not understood, check server compatibility"
	case phoenix.RemoteError:
		return "check the sql statement"
	default:
		return ""
	}
}

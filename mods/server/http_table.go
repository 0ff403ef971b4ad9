package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pqsgate/pqsgate/mods/hbase"
	"github.com/pqsgate/pqsgate/mods/msg"
)

func (s *svr) handleCreateTable(ctx *gin.Context) {
	rsp := &msg.TableResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	req := &msg.TableRequest{}
	if err := ctx.Bind(req); err != nil {
		rsp.Reason = err.Error()
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}
	if req.Table == "" {
		rsp.Reason = "empty table name"
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}
	if err := s.hbase.CreateTable(ctx.Request.Context(), req.Table, req.Families); err != nil {
		rsp.Reason = err.Error()
		ctx.JSON(http.StatusInternalServerError, rsp)
		return
	}
	rsp.Success = true
	rsp.Reason = "created"
	rsp.Table = req.Table
	ctx.JSON(http.StatusOK, rsp)
}

func (s *svr) handleTableExists(ctx *gin.Context) {
	rsp := &msg.TableResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	table := ctx.Param("table")
	exists, err := s.hbase.TableExists(ctx.Request.Context(), table)
	if err != nil {
		rsp.Reason = err.Error()
		ctx.JSON(http.StatusInternalServerError, rsp)
		return
	}
	rsp.Success = true
	rsp.Reason = "success"
	rsp.Table = table
	rsp.Exists = &exists
	ctx.JSON(http.StatusOK, rsp)
}

func (s *svr) handleTableSchema(ctx *gin.Context) {
	rsp := &msg.TableResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	table := ctx.Param("table")
	schema, err := s.hbase.GetSchema(ctx.Request.Context(), table)
	if err != nil {
		rsp.Reason = err.Error()
		if errors.Is(err, hbase.ErrTableNotFound) {
			ctx.JSON(http.StatusNotFound, rsp)
		} else {
			ctx.JSON(http.StatusInternalServerError, rsp)
		}
		return
	}
	rsp.Success = true
	rsp.Reason = "success"
	rsp.Table = table
	rsp.Schema = schema
	ctx.JSON(http.StatusOK, rsp)
}

func (s *svr) handleWriteCell(ctx *gin.Context) {
	rsp := &msg.TableResponse{Success: false, Reason: "not specified"}
	tick := time.Now()
	defer func() {
		rsp.Elapse = time.Since(tick).String()
	}()

	table := ctx.Param("table")
	req := &msg.WriteCellRequest{}
	if err := ctx.Bind(req); err != nil {
		rsp.Reason = err.Error()
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}
	if req.RowKey == "" || req.Column == "" {
		rsp.Reason = "rowKey and column are required"
		ctx.JSON(http.StatusBadRequest, rsp)
		return
	}
	if err := s.hbase.PutCell(ctx.Request.Context(), table, req.RowKey, req.Column, []byte(req.Value)); err != nil {
		rsp.Reason = err.Error()
		ctx.JSON(http.StatusInternalServerError, rsp)
		return
	}
	rsp.Success = true
	rsp.Reason = "success"
	rsp.Table = table
	ctx.JSON(http.StatusOK, rsp)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/maxviazov/soccer-scout-service/pkg/response"
	"github.com/rs/zerolog"
)

type QueryHandler struct {
	svc service.ScoutService
	log zerolog.Logger
}

func NewQueryHandler(svc service.ScoutService, logger zerolog.Logger) *QueryHandler {
	return &QueryHandler{svc: svc, log: logger.With().Str("component", "query").Logger()}
}

func (h *QueryHandler) Register(r *gin.RouterGroup) {
	r.POST("/query", h.query)
	r.GET("/capabilities", h.capabilities)
	r.GET("/queries/recent", h.recent)
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

func (h *QueryHandler) query(c *gin.Context) {
	if h.svc == nil {
		response.WriteError(c, service.ErrNotReady)
		return
	}
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Parser internals are not part of the contract.
		response.WriteError(c, service.InvalidField("query", "is required"))
		return
	}

	out, err := h.svc.Query(c.Request.Context(), req.Query)
	if err != nil {
		status, _ := response.MapError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("query failed")
		}
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, response.Format(out))
}

func (h *QueryHandler) capabilities(c *gin.Context) {
	if h.svc == nil {
		response.WriteError(c, service.ErrNotReady)
		return
	}
	response.WriteData(c, http.StatusOK, h.svc.Capabilities())
}

func (h *QueryHandler) recent(c *gin.Context) {
	if h.svc == nil {
		response.WriteError(c, service.ErrNotReady)
		return
	}
	limit, errLimit := queryInt(c, "limit")
	offset, errOffset := queryInt(c, "offset")
	if err := errors.Join(errLimit, errOffset); err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.RecentQueries(c.Request.Context(), repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.InvalidField(name, "must be an integer")
	}
	return v, nil
}

func notFound(c *gin.Context) {
	response.WriteError(c, response.ErrNotFound)
}

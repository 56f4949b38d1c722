package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	reservationdomain "github.com/floorops/floorops/internal/reservation/domain"
)

func (s *Server) ListReservations(c *gin.Context) {
	var query struct {
		From   string `form:"from"`
		To     string `form:"to"`
		Table  string `form:"table"`
		Status string `form:"status"`
		Search string `form:"q"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	filter := reservationdomain.ListFilter{
		From:   from,
		To:     to,
		Search: strings.TrimSpace(query.Search),
		Limit:  query.Limit,
	}
	if raw := strings.TrimSpace(query.Table); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("table", "invalid_table", "invalid table"))
			return
		}
		filter.TableNumber = &number
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		status := reservationdomain.Status(code)
		filter.Status = &status
	}

	resp, err := s.reservationSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateReservation(c *gin.Context) {
	var req reservationdomain.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reservationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelReservation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reservationSvc.Cancel(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cancelled": true}})
}

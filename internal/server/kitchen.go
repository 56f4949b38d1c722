package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	kitchendomain "github.com/floorops/floorops/internal/kitchen/domain"
)

func (s *Server) ListKitchenOrders(c *gin.Context) {
	resp, err := s.kitchenSvc.PendingOrders(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetKitchenItemStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req kitchendomain.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.kitchenSvc.SetItemStatus(c.Request.Context(), id, req.Status); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": true}})
}

package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetMenu(c *gin.Context) {
	var categoryID *snowflake.ID
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
			return
		}
		categoryID = &id
	}

	resp, err := s.catalogSvc.Menu(c.Request.Context(), categoryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

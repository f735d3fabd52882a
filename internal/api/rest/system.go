package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenSitePlanner/internal/interfaces"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	status := s.lm.GetCurrentStatus()
	c.JSON(http.StatusOK, status)
}

// POST /api/v1/system/reload-catalog
func (s *Server) reloadCatalog(c *gin.Context) {
	err := s.lm.ReloadCatalog(c.Request.Context())
	if errors.Is(err, interfaces.ErrNotRunning) {
		c.JSON(http.StatusConflict, types.NewErrorResponse("SYSTEM_409", "System busy", err.Error()))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("SYSTEM_500", "Failed to reload catalog", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog reloaded",
		"devices": len(s.lm.Catalog().List()),
	})
}

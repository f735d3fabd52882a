package rest

import (
	"fmt"
	"net/http"

	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/devices
func (s *Server) listDevices(c *gin.Context) {
	list := s.lm.Catalog().List()

	c.JSON(http.StatusOK, gin.H{
		"devices": list,
		"count":   len(list),
	})
}

// GET /api/v1/devices/:name
func (s *Server) getDevice(c *gin.Context) {
	name := c.Param("name")

	device, ok := s.lm.Catalog().Find(name)
	if !ok {
		s.respondError(c, "Failed to get device", fmt.Errorf("%w: %s", devices.ErrUnknownDevice, name))
		return
	}

	c.JSON(http.StatusOK, device)
}

// GET /api/v1/costs
func (s *Server) listCosts(c *gin.Context) {
	costs, err := s.lm.Design().Costs(c.Request.Context())
	if err != nil {
		s.respondError(c, "Failed to list costs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"costs": costs,
		"count": len(costs),
	})
}

// GET /api/v1/stages
func (s *Server) listStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stages": types.Stages,
	})
}

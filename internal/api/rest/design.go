package rest

import (
	"net/http"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/sites/:id/design
func (s *Server) getDesign(c *gin.Context) {
	design, err := s.lm.Design().GetDesign(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "Failed to get design", err)
		return
	}

	c.JSON(http.StatusOK, design)
}

// POST /api/v1/sites/:id/devices
func (s *Server) addDevice(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	design, device, err := s.lm.Design().AddDevice(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		s.respondError(c, "Failed to add device", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"device": device,
		"design": design,
	})
}

// DELETE /api/v1/sites/:id/devices/:instance_id
func (s *Server) removeDevice(c *gin.Context) {
	design, err := s.lm.Design().RemoveDevice(c.Request.Context(), c.Param("id"), c.Param("instance_id"))
	if err != nil {
		s.respondError(c, "Failed to remove device", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device removed",
		"design":  design,
	})
}

// POST /api/v1/layouts/preview
func (s *Server) previewLayout(c *gin.Context) {
	var req struct {
		Devices []types.Device `json:"devices" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	design, err := s.lm.Design().Preview(c.Request.Context(), req.Devices)
	if err != nil {
		s.respondError(c, "Failed to preview layout", err)
		return
	}

	c.JSON(http.StatusOK, design)
}

package rest

import (
	"fmt"
	"net/http"

	"github.com/KevinKickass/OpenSitePlanner/internal/api/websocket"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GET /api/v1/sites
func (s *Server) listSites(c *gin.Context) {
	sites, err := s.lm.Store().ListSites(c.Request.Context())
	if err != nil {
		s.respondError(c, "Failed to list sites", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sites": sites,
		"count": len(sites),
	})
}

// GET /api/v1/sites/:id
func (s *Server) getSite(c *gin.Context) {
	site, err := s.lm.Store().GetSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "Failed to get site", err)
		return
	}

	c.JSON(http.StatusOK, site)
}

// POST /api/v1/sites
func (s *Server) createSite(c *gin.Context) {
	var req struct {
		Name           string   `json:"name" binding:"required"`
		Path           string   `json:"path" binding:"required"`
		Address        string   `json:"address"`
		Lat            float64  `json:"lat"`
		Long           float64  `json:"long"`
		Stage          string   `json:"stage"`
		Market         string   `json:"market"`
		Metering       string   `json:"metering"`
		RevenueStreams []string `json:"revenue_streams"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if req.Stage == "" {
		req.Stage = types.StageDesign
	}
	if !types.IsValidStage(req.Stage) {
		badRequest(c, "Invalid stage", fmt.Errorf("unknown stage %q", req.Stage))
		return
	}

	site, err := s.lm.Store().CreateSite(c.Request.Context(), types.Site{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Path:           req.Path,
		Address:        req.Address,
		Lat:            req.Lat,
		Long:           req.Long,
		Stage:          req.Stage,
		Market:         req.Market,
		Metering:       req.Metering,
		RevenueStreams: req.RevenueStreams,
	})
	if err != nil {
		s.respondError(c, "Failed to create site", err)
		return
	}

	s.logger.Info("Site created", zap.String("site_id", site.ID), zap.String("name", site.Name))
	s.publish(websocket.NewSiteMessage(websocket.MessageTypeSiteCreated, site.ID, site))

	c.JSON(http.StatusCreated, site)
}

// PUT /api/v1/sites/:id
func (s *Server) updateSite(c *gin.Context) {
	var patch types.SitePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if patch.Stage != nil && !types.IsValidStage(*patch.Stage) {
		badRequest(c, "Invalid stage", fmt.Errorf("unknown stage %q", *patch.Stage))
		return
	}

	if patch.Layout != nil {
		if err := s.lm.Catalog().Validator().ValidateSiteLayout(*patch.Layout); err != nil {
			c.JSON(http.StatusUnprocessableEntity, types.NewErrorResponse(types.CodeInvalidLayout, "Layout does not match schema", err.Error()))
			return
		}
		if err := layout.Validate(patch.Layout.Flatten()); err != nil {
			s.respondError(c, "Invalid layout", err)
			return
		}
	}

	site, err := s.lm.Store().UpdateSite(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, "Failed to update site", err)
		return
	}

	s.publish(websocket.NewSiteMessage(websocket.MessageTypeSiteUpdated, site.ID, site))

	c.JSON(http.StatusOK, site)
}

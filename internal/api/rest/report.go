package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenSitePlanner/internal/report"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/sites/:id/report?format=xlsx|pdf
func (s *Server) siteReport(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, "Invalid report format", err)
		return
	}

	ctx := c.Request.Context()
	site, err := s.lm.Store().GetSite(ctx, c.Param("id"))
	if err != nil {
		s.respondError(c, "Failed to get site", err)
		return
	}

	design, err := s.lm.Design().GetDesign(ctx, site.ID)
	if err != nil {
		s.respondError(c, "Failed to get design", err)
		return
	}

	data, err := report.Build(format, report.Input{
		Site:        *site,
		Layout:      design.Layout,
		Summary:     design.Summary,
		Estimate:    design.Estimate,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		s.respondError(c, "Failed to build report", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(*site, format)))
	c.Data(http.StatusOK, format.ContentType(), data)
}

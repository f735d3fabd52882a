package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenSitePlanner/internal/design"
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/storage"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeBadRequest, message, err.Error()))
}

// respondError maps service errors onto status codes and the error envelope.
func (s *Server) respondError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrSiteNotFound):
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeSiteNotFound, "Site not found", err.Error()))
	case errors.Is(err, design.ErrDeviceNotFound), errors.Is(err, devices.ErrUnknownDevice):
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeDeviceNotFound, "Device not found", err.Error()))
	case errors.Is(err, layout.ErrInvalidDevice):
		c.JSON(http.StatusUnprocessableEntity, types.NewErrorResponse(types.CodeInvalidLayout, "Invalid layout", err.Error()))
	default:
		s.logger.Error(message, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeInternal, message, err.Error()))
	}
}

package heatmap

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/middleware"
)

// Handler handles HTTP requests for the heat-map module
type Handler struct {
	service *Service
}

// NewHandler creates a new heatmap handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetFilters returns the available map filter options
func (h *Handler) GetFilters(c *gin.Context) {
	filters, err := h.service.GetFilters(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to get map filters") {
		return
	}

	h.logAccess(c, "/filters", len(filters.Tipos))
	common.SuccessResponse(c, filters)
}

// GetPoints returns geocoded complaint points for the map
func (h *Handler) GetPoints(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	points, err := h.service.GetPoints(c.Request.Context(), filter)
	if common.HandleServiceError(c, err, "failed to get map points") {
		return
	}

	h.logAccess(c, "/points", len(points))
	common.SuccessResponse(c, points)
}

// GetZones returns zone polygons annotated with point counts
func (h *Handler) GetZones(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	points, err := h.service.GetPoints(ctx, filter)
	if common.HandleServiceError(c, err, "failed to get map points") {
		return
	}

	zones, err := h.service.GetZones(ctx, points)
	if common.HandleServiceError(c, err, "failed to get map zones") {
		return
	}

	h.logAccess(c, "/zones", len(zones))
	common.SuccessResponse(c, zones)
}

// DownloadPointsCSV streams the filtered points as a CSV attachment
func (h *Handler) DownloadPointsCSV(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	points, err := h.service.GetPoints(c.Request.Context(), filter)
	if common.HandleServiceError(c, err, "failed to get map points") {
		return
	}

	h.logAccess(c, "/points.csv", len(points))

	c.Header("Content-Disposition", "attachment; filename=incidentes_filtrados.csv")
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	if err := h.service.WritePointsCSV(c.Writer, points); err != nil {
		logger.ErrorContext(c.Request.Context(), "failed to stream points csv", zap.Error(err))
	}
}

func (h *Handler) bindFilter(c *gin.Context) (PointsFilter, bool) {
	var q PointsQuery
	if !common.BindQuery(c, &q) {
		return PointsFilter{}, false
	}

	filter, err := ParsePointsFilter(q)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return PointsFilter{}, false
	}
	return filter, true
}

func (h *Handler) logAccess(c *gin.Context, endpoint string, count int) {
	email, _ := middleware.GetUserEmail(c)
	role, _ := middleware.GetUserRole(c)

	logger.InfoContext(c.Request.Context(), "map module access",
		zap.String("endpoint", endpoint),
		zap.String("user", email),
		zap.String("role", string(role)),
		zap.Int("count", count),
	)
}

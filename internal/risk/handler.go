package risk

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
)

// Handler handles HTTP requests for the risk module
type Handler struct {
	service *Service
}

// NewHandler creates a new risk handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Predecir returns a risk assessment for a zone/turn combination
func (h *Handler) Predecir(c *gin.Context) {
	var req PrediccionRequest
	if !common.BindJSON(c, &req) {
		return
	}

	verdict, err := h.service.Predecir(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to assess risk") {
		return
	}

	logger.InfoContext(c.Request.Context(), "risk assessed",
		zap.Int("zona", verdict.Zona),
		zap.String("turno", verdict.Turno),
		zap.String("nivel", verdict.NivelRiesgo),
		zap.String("metodo", verdict.MetodoPrediccion),
	)
	common.SuccessResponse(c, verdict)
}

// GetZoneStats returns aggregate statistics for one zone
func (h *Handler) GetZoneStats(c *gin.Context) {
	zona, ok := common.ParseIntParam(c, "zona", "zona")
	if !ok {
		return
	}

	stats, err := h.service.GetZoneStats(c.Request.Context(), zona)
	if common.HandleServiceError(c, err, "failed to get zone statistics") {
		return
	}

	common.SuccessResponse(c, stats)
}

// GetZonasRiesgo returns the zones ranked by complaint volume
func (h *Handler) GetZonasRiesgo(c *gin.Context) {
	ranking, err := h.service.GetZonasRiesgo(c.Request.Context(), c.Query("turno"))
	if common.HandleServiceError(c, err, "failed to get zone ranking") {
		return
	}

	common.SuccessResponse(c, ranking)
}

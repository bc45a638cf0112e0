package complaints

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// uploads larger than this are rejected before parsing
const maxUploadBytes = 20 << 20

// Handler handles HTTP requests for complaints
type Handler struct {
	service *Service
}

// NewHandler creates a new complaints handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create registers one complaint
func (h *Handler) Create(c *gin.Context) {
	var req models.CreateDenunciaRequest
	if !common.BindJSON(c, &req) {
		return
	}

	denuncia, err := h.service.Create(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create complaint") {
		return
	}

	common.CreatedResponse(c, denuncia)
}

// List returns complaints matching the query parameters
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if !common.BindQuery(c, &q) {
		return
	}

	denuncias, err := h.service.List(c.Request.Context(), q)
	if common.HandleServiceError(c, err, "failed to list complaints") {
		return
	}

	common.SuccessResponse(c, denuncias)
}

// GetByID returns one complaint
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := common.ParseIntParam(c, "id", "complaint id")
	if !ok {
		return
	}

	denuncia, err := h.service.GetByID(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get complaint") {
		return
	}

	common.SuccessResponse(c, denuncia)
}

// GetStats returns the dashboard aggregates
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetDashboardStats(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to get dashboard stats") {
		return
	}

	common.SuccessResponse(c, stats)
}

// UploadExcel imports complaints from an XLSX/CSV intake sheet
func (h *Handler) UploadExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	summary, err := h.service.Import(c.Request.Context(), fileHeader.Filename, data)
	if common.HandleServiceError(c, err, "failed to import complaints") {
		return
	}

	common.SuccessResponse(c, summary)
}

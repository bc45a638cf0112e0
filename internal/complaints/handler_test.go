package complaints

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
	_ "github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/validation"
)

func setupTestRouter(repo *mockComplaintsRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := newTestService(repo)
	handler := NewHandler(service)

	router := gin.New()
	api := router.Group("/api/denuncias")
	{
		api.POST("", handler.Create)
		api.GET("", handler.List)
		api.GET("/stats", handler.GetStats)
		api.GET("/:id", handler.GetByID)
		api.POST("/upload-excel", handler.UploadExcel)
	}
	return router
}

func TestHandlerCreate(t *testing.T) {
	repo := new(mockComplaintsRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(5, nil).Once()
	repo.On("GetByID", mock.Anything, 5).Return(&models.Denuncia{
		ID:              5,
		ZonaDenuncia:    3,
		FechaHoraSuceso: time.Date(2026, 5, 10, 22, 15, 0, 0, time.UTC),
	}, nil).Once()

	router := setupTestRouter(repo)

	payload, err := json.Marshal(gin.H{
		"zona_denuncia":     3,
		"turno":             "noche",
		"fecha_hora_suceso": "2026-05-10T22:15:00Z",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/denuncias", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestHandlerCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"missing zona", gin.H{"fecha_hora_suceso": "2026-05-10T22:15:00Z"}},
		{"zona out of range", gin.H{"zona_denuncia": 8, "fecha_hora_suceso": "2026-05-10T22:15:00Z"}},
		{"bad turno", gin.H{"zona_denuncia": 3, "turno": "madrugada", "fecha_hora_suceso": "2026-05-10T22:15:00Z"}},
		{"bad latitude", gin.H{"zona_denuncia": 3, "fecha_hora_suceso": "2026-05-10T22:15:00Z", "latitud": 95.0, "longitud": -71.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(new(mockComplaintsRepository))

			payload, err := json.Marshal(tt.body)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/denuncias", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandlerList(t *testing.T) {
	repo := new(mockComplaintsRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
		return f.Zona != nil && *f.Zona == 3 && f.Turno == "noche" && f.Limit == 50
	})).Return([]models.Denuncia{{ID: 1, ZonaDenuncia: 3}}, nil).Once()

	router := setupTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/denuncias?zona=3&turno=noche&limit=50", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool              `json:"success"`
		Data    []models.Denuncia `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, 3, response.Data[0].ZonaDenuncia)

	repo.AssertExpectations(t)
}

func TestHandlerGetByID_NotFound(t *testing.T) {
	repo := new(mockComplaintsRepository)
	repo.On("GetByID", mock.Anything, 42).Return(nil, pgx.ErrNoRows).Once()

	router := setupTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/denuncias/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertExpectations(t)
}

func TestHandlerGetStats(t *testing.T) {
	repo := new(mockComplaintsRepository)
	repo.On("FetchDashboardStats", mock.Anything, mock.Anything).Return(&models.DashboardStats{
		TotalDenuncias: 7,
	}, nil).Once()

	router := setupTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/denuncias/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data models.DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(7), response.Data.TotalDenuncias)

	repo.AssertExpectations(t)
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/denuncias/upload-excel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandlerUploadExcel(t *testing.T) {
	repo := new(mockComplaintsRepository)
	repo.On("CreateBulk", mock.Anything, mock.Anything).Return(1, 0, nil).Once()

	router := setupTestRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "denuncias.csv", []byte(csvHeader+"\n"+csvRow+"\n")))

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data models.ImportSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Inserted)
	assert.Equal(t, "denuncias.csv", response.Data.SourceFile)

	repo.AssertExpectations(t)
}

func TestHandlerUploadExcel_MissingFile(t *testing.T) {
	router := setupTestRouter(new(mockComplaintsRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/denuncias/upload-excel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerUploadExcel_BadFormat(t *testing.T) {
	router := setupTestRouter(new(mockComplaintsRepository))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "denuncias.pdf", []byte("x")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

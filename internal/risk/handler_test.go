package risk

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	_ "github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/validation"
)

func setupTestRouter(repo *mockRiskRepository, classifier *Classifier) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := NewService(repo, nil, classifier, testRiskConfig())
	service.now = func() time.Time { return time.Date(2026, 6, 16, 10, 0, 0, 0, time.UTC) }
	handler := NewHandler(service)

	router := gin.New()
	api := router.Group("/api/risk")
	{
		api.POST("/prediccion", handler.Predecir)
		api.GET("/estadisticas/zona/:zona", handler.GetZoneStats)
		api.GET("/zonas-riesgo", handler.GetZonasRiesgo)
	}
	return router
}

func postPrediccion(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/risk/prediccion", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerPredecir(t *testing.T) {
	repo := new(mockRiskRepository)
	repo.On("FetchHistory", mock.Anything, 4, "noche", (*string)(nil), 2).
		Return(&HistoricalWindow{Total: 10, WindowDays: 2, DayCount: 3}, nil).Once()
	repo.On("FetchTopTipos", mock.Anything, 4, "noche", 5).
		Return([]TipoCount{{Tipo: "Robo", Cantidad: 6}}, nil).Once()

	router := setupTestRouter(repo, nil)

	w := postPrediccion(t, router, gin.H{"zona": 4, "turno": "noche", "dia_semana": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool    `json:"success"`
		Data    Verdict `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, NivelAlto, response.Data.NivelRiesgo)
	assert.Equal(t, MethodRules, response.Data.MetodoPrediccion)
	assert.Equal(t, int64(10), response.Data.Incidentes)

	repo.AssertExpectations(t)
}

func TestHandlerPredecir_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"missing zona", gin.H{"turno": "noche"}},
		{"zona out of range", gin.H{"zona": 9, "turno": "noche"}},
		{"missing turno", gin.H{"zona": 3}},
		{"unknown turno", gin.H{"zona": 3, "turno": "madrugada"}},
		{"dia_semana out of range", gin.H{"zona": 3, "turno": "noche", "dia_semana": 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(new(mockRiskRepository), nil)
			w := postPrediccion(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandlerPredecir_RepositoryError(t *testing.T) {
	repo := new(mockRiskRepository)
	repo.On("FetchHistory", mock.Anything, 4, "noche", (*string)(nil), 2).
		Return(nil, errors.New("connection refused")).Once()

	router := setupTestRouter(repo, nil)

	w := postPrediccion(t, router, gin.H{"zona": 4, "turno": "noche", "dia_semana": 2})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertExpectations(t)
}

func TestHandlerGetZoneStats(t *testing.T) {
	repo := new(mockRiskRepository)
	repo.On("FetchZoneStats", mock.Anything, 3).Return(&ZoneStats{
		Zona:           3,
		TotalDenuncias: 42,
		PorTurno:       []TurnCount{{Turno: "noche", Cantidad: 30}},
		PorTipo:        []TipoCount{{Tipo: "Robo", Cantidad: 25}},
	}, nil).Once()

	router := setupTestRouter(repo, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/risk/estadisticas/zona/3", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool      `json:"success"`
		Data    ZoneStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(42), response.Data.TotalDenuncias)

	repo.AssertExpectations(t)
}

func TestHandlerGetZoneStats_BadParams(t *testing.T) {
	router := setupTestRouter(new(mockRiskRepository), nil)

	for _, path := range []string{"/api/risk/estadisticas/zona/abc", "/api/risk/estadisticas/zona/0"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHandlerGetZonasRiesgo(t *testing.T) {
	repo := new(mockRiskRepository)
	repo.On("FetchZoneRanking", mock.Anything, "noche", 10).
		Return([]ZoneRisk{{Zona: 3, Incidentes: 150}}, nil).Once()

	router := setupTestRouter(repo, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/risk/zonas-riesgo?turno=noche", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool       `json:"success"`
		Data    []ZoneRisk `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, NivelAlto, response.Data[0].NivelRiesgo)

	repo.AssertExpectations(t)
}

package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
)

type mockRiskRepository struct {
	mock.Mock
}

func (m *mockRiskRepository) FetchHistory(ctx context.Context, zona int, turno string, tipo *string, diaSemana int) (*HistoricalWindow, error) {
	args := m.Called(ctx, zona, turno, tipo, diaSemana)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HistoricalWindow), args.Error(1)
}

func (m *mockRiskRepository) FetchTopTipos(ctx context.Context, zona int, turno string, limit int) ([]TipoCount, error) {
	args := m.Called(ctx, zona, turno, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TipoCount), args.Error(1)
}

func (m *mockRiskRepository) FetchZoneStats(ctx context.Context, zona int) (*ZoneStats, error) {
	args := m.Called(ctx, zona)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ZoneStats), args.Error(1)
}

func (m *mockRiskRepository) FetchZoneRanking(ctx context.Context, turno string, limit int) ([]ZoneRisk, error) {
	args := m.Called(ctx, turno, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ZoneRisk), args.Error(1)
}

func testRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		MinZone:          1,
		MaxZone:          7,
		HighThreshold:    5.0,
		MediumThreshold:  2.0,
		DefaultWindowDay: 1,
		TopTypesLimit:    5,
	}
}

func newRuleService(repo *mockRiskRepository) *Service {
	svc := NewService(repo, nil, nil, testRiskConfig())
	// Tuesday, mid-month, so defaults stay off the weekend path
	svc.now = func() time.Time { return time.Date(2026, 6, 16, 10, 0, 0, 0, time.UTC) }
	return svc
}

func intPtr(v int) *int { return &v }

func TestPredecir_RuleLevels(t *testing.T) {
	tests := []struct {
		name         string
		history      HistoricalWindow
		wantNivel    string
		wantProb     float64
		wantDensidad float64
	}{
		{
			name:         "density five is high risk",
			history:      HistoricalWindow{Total: 10, WindowDays: 2, DayCount: 3},
			wantNivel:    NivelAlto,
			wantProb:     0.95,
			wantDensidad: 5.0,
		},
		{
			name:         "density four is medium risk",
			history:      HistoricalWindow{Total: 8, WindowDays: 2, DayCount: 2},
			wantNivel:    NivelMedio,
			wantProb:     0.7,
			wantDensidad: 4.0,
		},
		{
			name:         "density below two is low risk",
			history:      HistoricalWindow{Total: 3, WindowDays: 2, DayCount: 1},
			wantNivel:    NivelBajo,
			wantProb:     0.15,
			wantDensidad: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRiskRepository)
			svc := newRuleService(repo)

			history := tt.history
			repo.On("FetchHistory", mock.Anything, 4, "noche", (*string)(nil), 2).
				Return(&history, nil).Once()
			repo.On("FetchTopTipos", mock.Anything, 4, "noche", 5).
				Return([]TipoCount{{Tipo: "Robo", Cantidad: 6}}, nil).Once()

			verdict, err := svc.Predecir(context.Background(), &PrediccionRequest{
				Zona:      4,
				Turno:     "Noche",
				DiaSemana: intPtr(2),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantNivel, verdict.NivelRiesgo)
			assert.InDelta(t, tt.wantProb, verdict.Probabilidad, 1e-9)
			assert.InDelta(t, tt.wantDensidad, verdict.DensidadDiaria, 1e-9)
			assert.Equal(t, MethodRules, verdict.MetodoPrediccion)
			assert.Equal(t, history.Total, verdict.Incidentes)
			assert.Equal(t, history.DayCount, verdict.DenunciasEsteDia)
			assert.Len(t, verdict.TiposComunes, 1)
			assert.NotEmpty(t, verdict.Recomendaciones)
			repo.AssertExpectations(t)
		})
	}
}

func TestPredecir_WindowFloorDampensShortHistories(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)
	svc.cfg.DefaultWindowDay = 10

	// 20 incidents over 2 observed days would read as density 10 (ALTO);
	// the 10-day floor brings it down to 2.0 (MEDIO).
	repo.On("FetchHistory", mock.Anything, 4, "noche", (*string)(nil), 2).
		Return(&HistoricalWindow{Total: 20, WindowDays: 2, DayCount: 4}, nil).Once()
	repo.On("FetchTopTipos", mock.Anything, 4, "noche", 5).
		Return([]TipoCount{}, nil).Once()

	verdict, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:      4,
		Turno:     "noche",
		DiaSemana: intPtr(2),
	})
	require.NoError(t, err)

	assert.Equal(t, NivelMedio, verdict.NivelRiesgo)
	assert.InDelta(t, 2.0, verdict.DensidadDiaria, 1e-9)
	repo.AssertExpectations(t)
}

func TestPredecir_NoHistoryReturnsSinDatos(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	repo.On("FetchHistory", mock.Anything, 2, "tarde", (*string)(nil), 3).
		Return(&HistoricalWindow{Total: 0, WindowDays: 1}, nil).Once()

	verdict, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:      2,
		Turno:     "tarde",
		DiaSemana: intPtr(3),
	})
	require.NoError(t, err)

	assert.Equal(t, NivelSinDatos, verdict.NivelRiesgo)
	assert.Zero(t, verdict.Probabilidad)
	assert.Zero(t, verdict.Incidentes)
	assert.Zero(t, verdict.DensidadDiaria)
	assert.NotEmpty(t, verdict.Mensaje)
	require.Len(t, verdict.Recomendaciones, 1)
	assert.Equal(t, "info", verdict.Recomendaciones[0].Tipo)
	// no common-types lookup when there is no history
	repo.AssertExpectations(t)
}

func TestPredecir_WeekendRaisesProbability(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	repo.On("FetchHistory", mock.Anything, 3, "noche", (*string)(nil), 5).
		Return(&HistoricalWindow{Total: 8, WindowDays: 2, DayCount: 4}, nil).Once()
	repo.On("FetchTopTipos", mock.Anything, 3, "noche", 5).
		Return([]TipoCount{}, nil).Once()

	verdict, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:      3,
		Turno:     "noche",
		DiaSemana: intPtr(5),
	})
	require.NoError(t, err)

	// weekday probability is 0.7; Saturday raises it by 20%
	assert.InDelta(t, 0.84, verdict.Probabilidad, 1e-9)
	repo.AssertExpectations(t)
}

func TestPredecir_UsesModelWhenLoaded(t *testing.T) {
	classifier, err := LoadClassifier(writeArtifact(t, testArtifact))
	require.NoError(t, err)

	repo := new(mockRiskRepository)
	svc := NewService(repo, nil, classifier, testRiskConfig())
	svc.now = func() time.Time { return time.Date(2026, 6, 16, 10, 0, 0, 0, time.UTC) }

	repo.On("FetchHistory", mock.Anything, 6, "noche", (*string)(nil), 2).
		Return(&HistoricalWindow{Total: 3, WindowDays: 2, DayCount: 1}, nil).Once()
	repo.On("FetchTopTipos", mock.Anything, 6, "noche", 5).
		Return([]TipoCount{}, nil).Once()

	verdict, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:      6,
		Turno:     "noche",
		DiaSemana: intPtr(2),
	})
	require.NoError(t, err)

	// zona 6 makes two of the three test trees vote ALTO, overriding the
	// low-density rule outcome
	assert.Equal(t, NivelAlto, verdict.NivelRiesgo)
	assert.Equal(t, MethodML, verdict.MetodoPrediccion)
	assert.InDelta(t, 0.667, verdict.Probabilidad, 1e-3)
	repo.AssertExpectations(t)
}

func TestPredecir_BrokenModelFallsBackToRules(t *testing.T) {
	classifier, err := LoadClassifier(writeArtifact(t, `{
		"version": "bad",
		"classes": ["BAJO", "MEDIO", "ALTO"],
		"trees": [
			[{"feature": 0, "threshold": 3.5, "left": 0, "right": 0, "class": -1}]
		]
	}`))
	require.NoError(t, err)

	repo := new(mockRiskRepository)
	svc := NewService(repo, nil, classifier, testRiskConfig())
	svc.now = func() time.Time { return time.Date(2026, 6, 16, 10, 0, 0, 0, time.UTC) }

	repo.On("FetchHistory", mock.Anything, 4, "noche", (*string)(nil), 2).
		Return(&HistoricalWindow{Total: 10, WindowDays: 2, DayCount: 3}, nil).Once()
	repo.On("FetchTopTipos", mock.Anything, 4, "noche", 5).
		Return([]TipoCount{}, nil).Once()

	verdict, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:      4,
		Turno:     "noche",
		DiaSemana: intPtr(2),
	})
	require.NoError(t, err)

	assert.Equal(t, NivelAlto, verdict.NivelRiesgo)
	assert.Equal(t, MethodRules, verdict.MetodoPrediccion)
	repo.AssertExpectations(t)
}

func TestPredecir_TypeFilterIsNormalized(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	tipo := "Robo"
	repo.On("FetchHistory", mock.Anything, 1, "mañana", &tipo, 0).
		Return(&HistoricalWindow{Total: 4, WindowDays: 2, DayCount: 1}, nil).Once()
	repo.On("FetchTopTipos", mock.Anything, 1, "mañana", 5).
		Return([]TipoCount{}, nil).Once()

	padded := "  Robo  "
	_, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:         1,
		Turno:        "MAÑANA",
		TipoDenuncia: &padded,
		DiaSemana:    intPtr(0),
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPredecir_RepositoryError(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	repo.On("FetchHistory", mock.Anything, 1, "tarde", (*string)(nil), 1).
		Return(nil, errors.New("connection refused")).Once()

	_, err := svc.Predecir(context.Background(), &PrediccionRequest{
		Zona:      1,
		Turno:     "tarde",
		DiaSemana: intPtr(1),
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Code)
	repo.AssertExpectations(t)
}

func TestGetZoneStats_InvalidZone(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	for _, zona := range []int{0, 8, -3} {
		_, err := svc.GetZoneStats(context.Background(), zona)
		require.Error(t, err)

		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
	}
}

func TestGetZoneStats_ReturnsAggregates(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	expected := &ZoneStats{
		Zona:           3,
		TotalDenuncias: 42,
		PorTurno:       []TurnCount{{Turno: "noche", Cantidad: 30}},
		PorTipo:        []TipoCount{{Tipo: "Robo", Cantidad: 25}},
	}
	repo.On("FetchZoneStats", mock.Anything, 3).Return(expected, nil).Once()

	stats, err := svc.GetZoneStats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, expected, stats)
	repo.AssertExpectations(t)
}

func TestGetZonasRiesgo_AssignsLevels(t *testing.T) {
	repo := new(mockRiskRepository)
	svc := newRuleService(repo)

	repo.On("FetchZoneRanking", mock.Anything, "noche", 10).
		Return([]ZoneRisk{
			{Zona: 3, Incidentes: 150},
			{Zona: 5, Incidentes: 100},
			{Zona: 1, Incidentes: 60},
			{Zona: 7, Incidentes: 12},
		}, nil).Once()

	ranking, err := svc.GetZonasRiesgo(context.Background(), " Noche ")
	require.NoError(t, err)

	require.Len(t, ranking, 4)
	assert.Equal(t, NivelAlto, ranking[0].NivelRiesgo)
	assert.Equal(t, NivelAlto, ranking[1].NivelRiesgo)
	assert.Equal(t, NivelMedio, ranking[2].NivelRiesgo)
	assert.Equal(t, NivelBajo, ranking[3].NivelRiesgo)
	repo.AssertExpectations(t)
}

func TestMondayWeekday(t *testing.T) {
	// 2026-06-15 is a Monday
	assert.Equal(t, 0, mondayWeekday(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5, mondayWeekday(time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, mondayWeekday(time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)))
}

package heatmap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

type mockHeatmapRepository struct {
	mock.Mock
}

func (m *mockHeatmapRepository) FetchPoints(ctx context.Context, filter PointsFilter) ([]MapPoint, error) {
	args := m.Called(ctx, filter)
	points, _ := args.Get(0).([]MapPoint)
	return points, args.Error(1)
}

func (m *mockHeatmapRepository) FetchZones(ctx context.Context) ([]models.Zona, error) {
	args := m.Called(ctx)
	zones, _ := args.Get(0).([]models.Zona)
	return zones, args.Error(1)
}

func (m *mockHeatmapRepository) FetchFilterOptions(ctx context.Context) (*MapFilters, error) {
	args := m.Called(ctx)
	filters, _ := args.Get(0).(*MapFilters)
	return filters, args.Error(1)
}

func testMapConfig() config.MapConfig {
	return config.MapConfig{
		FiltersCacheTTL: time.Minute,
		ZonesCacheTTL:   time.Minute,
		MaxPoints:       5000,
	}
}

func TestServiceGetFiltersAppliesFallbacks(t *testing.T) {
	ctx := context.Background()
	repo := new(mockHeatmapRepository)
	service := NewService(repo, nil, testMapConfig())

	repo.On("FetchFilterOptions", ctx).Return(&MapFilters{
		Tipos:  []string{},
		Turnos: []string{},
		Zonas:  []int{},
	}, nil).Once()

	filters, err := service.GetFilters(ctx)
	require.NoError(t, err)

	assert.Equal(t, defaultTipos, filters.Tipos)
	assert.Equal(t, defaultTurnos, filters.Turnos)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, filters.Zonas)
	repo.AssertExpectations(t)
}

func TestServiceGetFiltersRepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockHeatmapRepository)
	service := NewService(repo, nil, testMapConfig())

	repo.On("FetchFilterOptions", ctx).Return(nil, errors.New("db down")).Once()

	_, err := service.GetFilters(ctx)
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestServiceGetPointsClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(mockHeatmapRepository)
	service := NewService(repo, nil, testMapConfig())

	repo.On("FetchPoints", ctx, mock.MatchedBy(func(f PointsFilter) bool {
		return f.Limit == 5000
	})).Return([]MapPoint{}, nil).Twice()

	_, err := service.GetPoints(ctx, PointsFilter{})
	require.NoError(t, err)

	_, err = service.GetPoints(ctx, PointsFilter{Limit: 999999})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestServiceGetZonesAnnotatesCounts(t *testing.T) {
	ctx := context.Background()
	repo := new(mockHeatmapRepository)
	service := NewService(repo, nil, testMapConfig())

	square, err := json.Marshal(map[string]interface{}{
		"type":        "Polygon",
		"coordinates": [][][2]float64{squareRing(-71.539, -16.413, -71.531, -16.405)},
	})
	require.NoError(t, err)

	repo.On("FetchZones", ctx).Return([]models.Zona{
		{IDZona: 1, Nombre: "Z1", GeoJSON: square, CentroidLat: -16.409, CentroidLon: -71.535},
	}, nil).Once()

	points := []MapPoint{
		point(1, -71.535, -16.409), // inside Z1
		point(2, -70.000, -16.000), // outside
	}

	zones, err := service.GetZones(ctx, points)
	require.NoError(t, err)
	require.Len(t, zones, 1)

	assert.Equal(t, 1, zones[0].Count)
	assert.Equal(t, []float64{-16.409, -71.535}, zones[0].Centroid)
	repo.AssertExpectations(t)
}

func TestServiceWritePointsCSV(t *testing.T) {
	service := NewService(new(mockHeatmapRepository), nil, testMapConfig())

	tipo := "Robo"
	direccion := "Av. Dolores 123"
	fecha := time.Date(2025, 6, 15, 22, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := service.WritePointsCSV(&buf, []MapPoint{
		{ID: 7, Lat: -16.41, Lon: -71.53, Peso: 0.9, Tipo: &tipo, Fecha: fecha, Zona: 3, Direccion: &direccion},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,fecha,tipo,turno,zona,lat,lon,direccion", lines[0])
	assert.Contains(t, lines[1], "7,2025-06-15T22:30:00Z,Robo,")
	assert.Contains(t, lines[1], "Av. Dolores 123")
}

func TestParsePointsFilter(t *testing.T) {
	t.Run("full query", func(t *testing.T) {
		anio := 2025
		filter, err := ParsePointsFilter(PointsQuery{
			Desde: "2025-01-01",
			Hasta: "2025-06-30",
			Tipo:  "Robo, Hurto",
			Turno: "noche",
			Zona:  "1,3,5",
			Anio:  &anio,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"Robo", "Hurto"}, filter.Tipos)
		assert.Equal(t, []string{"noche"}, filter.Turnos)
		assert.Equal(t, []int{1, 3, 5}, filter.Zonas)
		assert.Equal(t, 2025, *filter.Anio)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *filter.Desde)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := ParsePointsFilter(PointsQuery{Desde: "01/01/2025"})
		assert.Error(t, err)
	})

	t.Run("bad zone", func(t *testing.T) {
		_, err := ParsePointsFilter(PointsQuery{Zona: "1,x"})
		assert.Error(t, err)
	})

	t.Run("empty query", func(t *testing.T) {
		filter, err := ParsePointsFilter(PointsQuery{})
		require.NoError(t, err)
		assert.Nil(t, filter.Desde)
		assert.Nil(t, filter.Tipos)
	})
}

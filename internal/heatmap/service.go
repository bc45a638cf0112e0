package heatmap

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/cache"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// HeatmapRepository defines the persistence operations required by the service.
type HeatmapRepository interface {
	FetchPoints(ctx context.Context, filter PointsFilter) ([]MapPoint, error)
	FetchZones(ctx context.Context) ([]models.Zona, error)
	FetchFilterOptions(ctx context.Context) (*MapFilters, error)
}

// Fallback filter options shown before any data is imported
var (
	defaultTipos  = []string{"Robo", "Hurto", "Lesiones", "Violencia familiar", "Otros"}
	defaultTurnos = []string{models.TurnoManana, models.TurnoTarde, models.TurnoNoche}
)

// Service handles heat-map business logic
type Service struct {
	repo  HeatmapRepository
	cache *cache.Manager
	cfg   config.MapConfig
}

// NewService creates a new heatmap service
func NewService(repo HeatmapRepository, cacheManager *cache.Manager, cfg config.MapConfig) *Service {
	return &Service{repo: repo, cache: cacheManager, cfg: cfg}
}

// GetFilters returns the filter options for the map UI, cached briefly
// since distinct scans are comparatively expensive.
func (s *Service) GetFilters(ctx context.Context) (*MapFilters, error) {
	var filters MapFilters

	fetch := func() (interface{}, error) {
		fetched, err := s.repo.FetchFilterOptions(ctx)
		if err != nil {
			return nil, err
		}
		applyFilterFallbacks(fetched)
		return fetched, nil
	}

	if s.cache != nil {
		if err := s.cache.GetOrSet(ctx, cache.Keys.MapFilters(), s.cfg.FiltersCacheTTL, &filters, fetch); err != nil {
			return nil, err
		}
		return &filters, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}
	return result.(*MapFilters), nil
}

func applyFilterFallbacks(filters *MapFilters) {
	if len(filters.Tipos) == 0 {
		filters.Tipos = defaultTipos
	}
	if len(filters.Turnos) == 0 {
		filters.Turnos = defaultTurnos
	}
	if len(filters.Zonas) == 0 {
		for z := 1; z <= 7; z++ {
			filters.Zonas = append(filters.Zonas, z)
		}
	}
}

// GetPoints returns complaint points matching the filter.
func (s *Service) GetPoints(ctx context.Context, filter PointsFilter) ([]MapPoint, error) {
	if filter.Limit <= 0 || filter.Limit > s.cfg.MaxPoints {
		filter.Limit = s.cfg.MaxPoints
	}
	return s.repo.FetchPoints(ctx, filter)
}

// GetZones returns the zone features annotated with per-zone counts of
// the currently filtered points.
func (s *Service) GetZones(ctx context.Context, points []MapPoint) ([]ZoneFeature, error) {
	var zonas []models.Zona

	if s.cache != nil {
		if err := s.cache.GetOrSet(ctx, cache.Keys.MapZones(), s.cfg.ZonesCacheTTL, &zonas, func() (interface{}, error) {
			return s.repo.FetchZones(ctx)
		}); err != nil {
			return nil, err
		}
	} else {
		fetched, err := s.repo.FetchZones(ctx)
		if err != nil {
			return nil, err
		}
		zonas = fetched
	}

	features := make([]ZoneFeature, 0, len(zonas))
	for _, z := range zonas {
		features = append(features, ZoneFeature{
			IDZona:   z.IDZona,
			Nombre:   z.Nombre,
			GeoJSON:  z.GeoJSON,
			Centroid: []float64{z.CentroidLat, z.CentroidLon},
		})
	}

	counts := CountPointsByZone(points, features)
	for i := range features {
		features[i].Count = counts[features[i].IDZona]
	}

	return features, nil
}

// WritePointsCSV streams the filtered points as CSV.
func (s *Service) WritePointsCSV(w io.Writer, points []MapPoint) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"id", "fecha", "tipo", "turno", "zona", "lat", "lon", "direccion"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	for _, p := range points {
		record := []string{
			strconv.Itoa(p.ID),
			p.Fecha.Format(time.RFC3339),
			deref(p.Tipo),
			deref(p.Turno),
			strconv.Itoa(p.Zona),
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lon, 'f', -1, 64),
			deref(p.Direccion),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParsePointsFilter converts raw query parameters into a PointsFilter.
func ParsePointsFilter(q PointsQuery) (PointsFilter, error) {
	filter := PointsFilter{Anio: q.Anio}

	parseDate := func(value string) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
		}
		return &t, nil
	}

	var err error
	if filter.Desde, err = parseDate(q.Desde); err != nil {
		return filter, err
	}
	if filter.Hasta, err = parseDate(q.Hasta); err != nil {
		return filter, err
	}

	filter.Tipos = splitCSV(q.Tipo)
	filter.Turnos = splitCSV(q.Turno)

	for _, raw := range splitCSV(q.Zona) {
		zona, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid zone %q", raw)
		}
		filter.Zonas = append(filter.Zonas, zona)
	}

	return filter, nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

package complaints

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/cache"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// ComplaintsRepository defines the persistence operations required by the service.
type ComplaintsRepository interface {
	Create(ctx context.Context, d *models.Denuncia) (int, error)
	CreateBulk(ctx context.Context, rows []*models.Denuncia) (int, int, error)
	GetByID(ctx context.Context, id int) (*models.Denuncia, error)
	List(ctx context.Context, filter ListFilter) ([]models.Denuncia, error)
	FetchDashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error)
}

const (
	dashboardCacheTTL = time.Minute

	// keep import error payloads bounded
	maxReportedRowErrors = 25
)

// Service handles complaint business logic
type Service struct {
	repo  ComplaintsRepository
	cache *cache.Manager
	now   func() time.Time
}

// NewService creates a new complaints service
func NewService(repo ComplaintsRepository, cacheManager *cache.Manager) *Service {
	return &Service{repo: repo, cache: cacheManager, now: time.Now}
}

// Create registers one complaint. The heat weight is computed at insert
// time from the incident type, outcome and age.
func (s *Service) Create(ctx context.Context, req *models.CreateDenunciaRequest) (*models.Denuncia, error) {
	d := &models.Denuncia{
		NumeroParte:         req.NumeroParte,
		EstadoDenuncia:      req.EstadoDenuncia,
		ZonaDenuncia:        req.ZonaDenuncia,
		Turno:               req.Turno,
		FechaHoraSuceso:     req.FechaHoraSuceso,
		FechaHoraAlerta:     req.FechaHoraAlerta,
		FechaHoraLlegada:    req.FechaHoraLlegada,
		EdadVictima:         req.EdadVictima,
		SexoVictima:         req.SexoVictima,
		TipoDenuncia:        req.TipoDenuncia,
		ResultadoOcurrencia: req.ResultadoOcurrencia,
		LugarOcurrencia:     req.LugarOcurrencia,
		DireccionOcurrencia: req.DireccionOcurrencia,
		Comentarios:         req.Comentarios,
		Latitud:             req.Latitud,
		Longitud:            req.Longitud,
		GeocodeStatus:       models.GeocodePending,
	}
	if d.Latitud != nil && d.Longitud != nil {
		d.GeocodeStatus = models.GeocodeOK
	}
	d.Peso = ComputeHeatWeight(d.TipoDenuncia, d.ResultadoOcurrencia, d.FechaHoraSuceso, s.now())

	id, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, common.NewInternalError("failed to create complaint", err)
	}

	s.invalidateAggregates(ctx)

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewInternalError("failed to load created complaint", err)
	}
	return created, nil
}

// GetByID returns one complaint.
func (s *Service) GetByID(ctx context.Context, id int) (*models.Denuncia, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("complaint not found")
		}
		return nil, common.NewInternalError("failed to load complaint", err)
	}
	return d, nil
}

// List returns complaints matching the query, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Denuncia, error) {
	filter, err := ParseListFilter(q)
	if err != nil {
		return nil, common.NewBadRequestError(err.Error(), err)
	}

	denuncias, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, common.NewInternalError("failed to list complaints", err)
	}
	return denuncias, nil
}

// GetDashboardStats returns the dashboard aggregates, cached briefly.
func (s *Service) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats

	fetch := func() (interface{}, error) {
		fetched, err := s.repo.FetchDashboardStats(ctx, s.now())
		if err != nil {
			return nil, common.NewInternalError("failed to load dashboard stats", err)
		}
		return fetched, nil
	}

	if s.cache != nil {
		if err := s.cache.GetOrSet(ctx, cache.Keys.DashboardStats(), dashboardCacheTTL, &stats, fetch); err != nil {
			return nil, err
		}
		return &stats, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}
	return result.(*models.DashboardStats), nil
}

// Import loads an uploaded XLSX/CSV intake sheet. Malformed rows are
// reported with their sheet line and skipped; rows already present (by
// content hash) count as duplicates.
func (s *Service) Import(ctx context.Context, filename string, data []byte) (*models.ImportSummary, error) {
	rows, err := ReadSpreadsheet(filename, data)
	if err != nil {
		return nil, common.NewBadRequestError(err.Error(), err)
	}

	summary := &models.ImportSummary{
		SourceFile: filename,
		Total:      len(rows),
	}

	now := s.now()
	valid := make([]*models.Denuncia, 0, len(rows))
	for _, row := range rows {
		d, err := BuildDenuncia(row, filename)
		if err != nil {
			summary.Rejected++
			if len(summary.Errors) < maxReportedRowErrors {
				summary.Errors = append(summary.Errors, err.Error())
			}
			continue
		}
		d.Peso = ComputeHeatWeight(d.TipoDenuncia, d.ResultadoOcurrencia, d.FechaHoraSuceso, now)
		valid = append(valid, d)
	}

	if len(valid) > 0 {
		inserted, duplicates, err := s.repo.CreateBulk(ctx, valid)
		if err != nil {
			return nil, common.NewInternalError("failed to import complaints", err)
		}
		summary.Inserted = inserted
		summary.Duplicates = duplicates
		s.invalidateAggregates(ctx)
	}

	logger.InfoContext(ctx, "complaint import finished",
		zap.String("source_file", filename),
		zap.Int("total", summary.Total),
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("rejected", summary.Rejected),
	)

	return summary, nil
}

// invalidateAggregates drops the cached views complaint writes feed into.
func (s *Service) invalidateAggregates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{cache.Keys.DashboardStats(), cache.Keys.MapFilters(), cache.Keys.MapZones()}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.WarnContext(ctx, "failed to invalidate complaint caches", zap.Error(err))
	}
}

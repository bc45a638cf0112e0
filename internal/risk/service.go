package risk

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/cache"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
)

// RiskRepository defines the persistence operations required by the service.
type RiskRepository interface {
	FetchHistory(ctx context.Context, zona int, turno string, tipo *string, diaSemana int) (*HistoricalWindow, error)
	FetchTopTipos(ctx context.Context, zona int, turno string, limit int) ([]TipoCount, error)
	FetchZoneStats(ctx context.Context, zona int) (*ZoneStats, error)
	FetchZoneRanking(ctx context.Context, turno string, limit int) ([]ZoneRisk, error)
}

const (
	zoneStatsCacheTTL = 5 * time.Minute
	rankingLimit      = 10

	// incident volume thresholds for the zone ranking
	rankingHighCount   = 100
	rankingMediumCount = 50
)

// Service handles risk assessment business logic
type Service struct {
	repo       RiskRepository
	cache      *cache.Manager
	classifier *Classifier
	cfg        config.RiskConfig
	now        func() time.Time
}

// NewService creates a new risk service. A nil classifier is valid and
// routes every prediction through the rule engine.
func NewService(repo RiskRepository, cacheManager *cache.Manager, classifier *Classifier, cfg config.RiskConfig) *Service {
	return &Service{
		repo:       repo,
		cache:      cacheManager,
		classifier: classifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Predecir assesses the risk level for a zone/turn combination. The
// trained classifier is attempted first; any inference failure falls
// back to the daily-density rules so the caller always gets a verdict.
func (s *Service) Predecir(ctx context.Context, req *PrediccionRequest) (*Verdict, error) {
	turno := strings.ToLower(strings.TrimSpace(req.Turno))

	var tipo *string
	if req.TipoDenuncia != nil && strings.TrimSpace(*req.TipoDenuncia) != "" {
		normalized := strings.TrimSpace(*req.TipoDenuncia)
		tipo = &normalized
	}

	diaSemana := mondayWeekday(s.now())
	if req.DiaSemana != nil {
		diaSemana = *req.DiaSemana
	}

	history, err := s.repo.FetchHistory(ctx, req.Zona, turno, tipo, diaSemana)
	if err != nil {
		return nil, common.NewInternalError("failed to load complaint history", err)
	}

	verdict := &Verdict{
		Zona:             req.Zona,
		Turno:            turno,
		DiaSemana:        diaSemana,
		Incidentes:       history.Total,
		DenunciasEsteDia: history.DayCount,
		TiposComunes:     []TipoCount{},
		Recomendaciones:  []Recomendacion{},
	}

	if history.Total == 0 {
		verdict.NivelRiesgo = NivelSinDatos
		verdict.MetodoPrediccion = MethodRules
		verdict.Mensaje = "No se encontraron datos históricos para realizar una predicción confiable."
		verdict.Recomendaciones = append(verdict.Recomendaciones, Recomendacion{
			Tipo:  "info",
			Texto: "📊 No hay datos históricos suficientes para esta combinación de zona y turno. Se recomienda patrullaje preventivo estándar.",
		})
		return verdict, nil
	}

	// The observed window can be a single day for sparse histories;
	// the configured floor keeps one burst from reading as a trend.
	windowDays := history.WindowDays
	if windowDays < s.cfg.DefaultWindowDay {
		windowDays = s.cfg.DefaultWindowDay
	}

	densidad := float64(history.Total) / float64(windowDays)
	verdict.DensidadDiaria = round2(densidad)

	nivel, probabilidad, method := s.classify(req.Zona, turno, tipo, diaSemana, densidad)
	verdict.NivelRiesgo = nivel
	verdict.Probabilidad = round3(probabilidad)
	verdict.MetodoPrediccion = method

	tipos, err := s.repo.FetchTopTipos(ctx, req.Zona, turno, s.cfg.TopTypesLimit)
	if err != nil {
		return nil, common.NewInternalError("failed to load common incident types", err)
	}
	verdict.TiposComunes = tipos
	verdict.Recomendaciones = buildRecommendations(nivel, turno, tipos)

	return verdict, nil
}

// classify runs the model when one is loaded and falls back to the
// density rules on any inference error.
func (s *Service) classify(zona int, turno string, tipo *string, diaSemana int, densidad float64) (string, float64, string) {
	if s.classifier != nil {
		tipoStr := ""
		if tipo != nil {
			tipoStr = *tipo
		}
		features := s.classifier.EncodeFeatures(zona, turno, tipoStr, diaSemana, int(s.now().Month()))
		nivel, confidence, err := s.classifier.Predict(features)
		if err == nil {
			return nivel, confidence, MethodML
		}
		logger.Warn("classifier inference failed, using rule engine",
			zap.Int("zona", zona),
			zap.String("turno", turno),
			zap.Error(err))
	}

	var nivel string
	var probabilidad float64
	switch {
	case densidad >= s.cfg.HighThreshold:
		nivel = NivelAlto
		probabilidad = math.Min(0.95, 0.5+densidad/10)
	case densidad >= s.cfg.MediumThreshold:
		nivel = NivelMedio
		probabilidad = 0.3 + densidad/10
	default:
		nivel = NivelBajo
		probabilidad = math.Max(0.05, densidad/10)
	}

	// weekends see more incidents
	if diaSemana == 5 || diaSemana == 6 {
		probabilidad = math.Min(1.0, probabilidad*1.2)
	}

	return nivel, probabilidad, MethodRules
}

// GetZoneStats returns aggregate statistics for one zone, cached briefly.
func (s *Service) GetZoneStats(ctx context.Context, zona int) (*ZoneStats, error) {
	if zona < s.cfg.MinZone || zona > s.cfg.MaxZone {
		return nil, common.NewBadRequestError(
			fmt.Sprintf("zona must be between %d and %d", s.cfg.MinZone, s.cfg.MaxZone), nil)
	}

	var stats ZoneStats

	fetch := func() (interface{}, error) {
		fetched, err := s.repo.FetchZoneStats(ctx, zona)
		if err != nil {
			return nil, common.NewInternalError("failed to load zone statistics", err)
		}
		return fetched, nil
	}

	if s.cache != nil {
		if err := s.cache.GetOrSet(ctx, cache.Keys.ZoneStats(zona), zoneStatsCacheTTL, &stats, fetch); err != nil {
			return nil, err
		}
		return &stats, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}
	return result.(*ZoneStats), nil
}

// GetZonasRiesgo ranks zones by complaint volume, optionally narrowed
// to a single turn.
func (s *Service) GetZonasRiesgo(ctx context.Context, turno string) ([]ZoneRisk, error) {
	ranking, err := s.repo.FetchZoneRanking(ctx, strings.ToLower(strings.TrimSpace(turno)), rankingLimit)
	if err != nil {
		return nil, common.NewInternalError("failed to load zone ranking", err)
	}

	for i := range ranking {
		switch {
		case ranking[i].Incidentes >= rankingHighCount:
			ranking[i].NivelRiesgo = NivelAlto
		case ranking[i].Incidentes >= rankingMediumCount:
			ranking[i].NivelRiesgo = NivelMedio
		default:
			ranking[i].NivelRiesgo = NivelBajo
		}
	}

	return ranking, nil
}

func buildRecommendations(nivel, turno string, tipos []TipoCount) []Recomendacion {
	recomendaciones := []Recomendacion{}

	switch nivel {
	case NivelAlto:
		recomendaciones = append(recomendaciones,
			Recomendacion{
				Tipo:  "urgente",
				Texto: "⚠️ Riesgo ALTO detectado. Se recomienda patrullaje inmediato en turno " + turno + ".",
			},
			Recomendacion{
				Tipo:  "accion",
				Texto: "Incrementar presencia policial en un 50% durante este horario.",
			},
		)
		if len(tipos) > 0 {
			recomendaciones = append(recomendaciones, Recomendacion{
				Tipo:  "info",
				Texto: "Delito más frecuente: " + tipos[0].Tipo + ". Enfocar prevención específica.",
			})
		}
	case NivelMedio:
		recomendaciones = append(recomendaciones,
			Recomendacion{
				Tipo:  "preventivo",
				Texto: "Riesgo MEDIO. Patrullaje preventivo recomendado en turno " + turno + ".",
			},
			Recomendacion{
				Tipo:  "accion",
				Texto: "Mantener vigilancia constante y respuesta rápida ante alertas.",
			},
		)
	default:
		recomendaciones = append(recomendaciones,
			Recomendacion{
				Tipo:  "normal",
				Texto: "Riesgo BAJO. Monitoreo estándar suficiente en turno " + turno + ".",
			},
			Recomendacion{
				Tipo:  "info",
				Texto: "Continuar con patrullaje rutinario según cronograma establecido.",
			},
		)
	}

	return recomendaciones
}

// mondayWeekday converts Go's Sunday-based weekday to 0=Monday.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

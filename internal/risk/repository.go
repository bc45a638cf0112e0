package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for the risk module
type Repository struct {
	db *pgxpool.Pool
}

var _ RiskRepository = (*Repository)(nil)

// NewRepository creates a new risk repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FetchHistory returns the complaint history for a zone/turn (optionally
// narrowed by incident type) plus the per-day-of-week count for diaSemana.
// WindowDays spans from the oldest to the newest matching complaint,
// floored at one day.
func (r *Repository) FetchHistory(ctx context.Context, zona int, turno string, tipo *string, diaSemana int) (*HistoricalWindow, error) {
	where := strings.Builder{}
	where.WriteString("zona_denuncia = $1 AND LOWER(turno) = $2")
	args := []interface{}{zona, strings.ToLower(strings.TrimSpace(turno))}

	if tipo != nil && *tipo != "" {
		args = append(args, "%"+strings.ToLower(*tipo)+"%")
		where.WriteString(fmt.Sprintf(" AND LOWER(tipo_denuncia) LIKE $%d", len(args)))
	}

	window := &HistoricalWindow{WindowDays: 1}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       GREATEST(1, COALESCE(EXTRACT(DAY FROM MAX(fecha_hora_suceso) - MIN(fecha_hora_suceso))::int, 1))
		FROM denuncias
		WHERE %s
	`, where.String())

	if err := r.db.QueryRow(ctx, query, args...).Scan(&window.Total, &window.WindowDays); err != nil {
		return nil, fmt.Errorf("failed to fetch complaint history: %w", err)
	}

	// Postgres DOW is 0=Sunday; callers use 0=Monday
	args = append(args, (diaSemana+1)%7)
	dayQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM denuncias
		WHERE %s AND EXTRACT(DOW FROM fecha_hora_suceso) = $%d
	`, where.String(), len(args))

	if err := r.db.QueryRow(ctx, dayQuery, args...).Scan(&window.DayCount); err != nil {
		return nil, fmt.Errorf("failed to fetch day-of-week count: %w", err)
	}

	return window, nil
}

// FetchTopTipos returns the most frequent incident types for a zone/turn.
func (r *Repository) FetchTopTipos(ctx context.Context, zona int, turno string, limit int) ([]TipoCount, error) {
	query := `
		SELECT tipo_denuncia, COUNT(*) AS cantidad
		FROM denuncias
		WHERE zona_denuncia = $1 AND LOWER(turno) = $2 AND tipo_denuncia IS NOT NULL
		GROUP BY tipo_denuncia
		ORDER BY cantidad DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, zona, strings.ToLower(strings.TrimSpace(turno)), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top incident types: %w", err)
	}
	defer rows.Close()

	tipos := []TipoCount{}
	for rows.Next() {
		var tc TipoCount
		if err := rows.Scan(&tc.Tipo, &tc.Cantidad); err != nil {
			return nil, fmt.Errorf("failed to scan incident type: %w", err)
		}
		tipos = append(tipos, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incident types: %w", err)
	}

	return tipos, nil
}

// FetchZoneStats aggregates full statistics for one zone.
func (r *Repository) FetchZoneStats(ctx context.Context, zona int) (*ZoneStats, error) {
	stats := &ZoneStats{
		Zona:     zona,
		PorTurno: []TurnCount{},
		PorTipo:  []TipoCount{},
	}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM denuncias WHERE zona_denuncia = $1`, zona,
	).Scan(&stats.TotalDenuncias)
	if err != nil {
		return nil, fmt.Errorf("failed to count zone complaints: %w", err)
	}

	turnoRows, err := r.db.Query(ctx, `
		SELECT turno, COUNT(*) AS cantidad
		FROM denuncias
		WHERE zona_denuncia = $1 AND turno IS NOT NULL
		GROUP BY turno
		ORDER BY cantidad DESC
	`, zona)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zone turn stats: %w", err)
	}
	defer turnoRows.Close()
	for turnoRows.Next() {
		var tc TurnCount
		if err := turnoRows.Scan(&tc.Turno, &tc.Cantidad); err != nil {
			return nil, fmt.Errorf("failed to scan zone turn stat: %w", err)
		}
		stats.PorTurno = append(stats.PorTurno, tc)
	}
	if err := turnoRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zone turn stats: %w", err)
	}

	tipoRows, err := r.db.Query(ctx, `
		SELECT tipo_denuncia, COUNT(*) AS cantidad
		FROM denuncias
		WHERE zona_denuncia = $1 AND tipo_denuncia IS NOT NULL
		GROUP BY tipo_denuncia
		ORDER BY cantidad DESC
		LIMIT 10
	`, zona)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zone type stats: %w", err)
	}
	defer tipoRows.Close()
	for tipoRows.Next() {
		var tc TipoCount
		if err := tipoRows.Scan(&tc.Tipo, &tc.Cantidad); err != nil {
			return nil, fmt.Errorf("failed to scan zone type stat: %w", err)
		}
		stats.PorTipo = append(stats.PorTipo, tc)
	}
	if err := tipoRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zone type stats: %w", err)
	}

	return stats, nil
}

// FetchZoneRanking returns zones ordered by complaint volume, optionally
// narrowed to a single turn.
func (r *Repository) FetchZoneRanking(ctx context.Context, turno string, limit int) ([]ZoneRisk, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT zona_denuncia, COUNT(*) AS cantidad
		FROM denuncias
	`)

	args := []interface{}{}
	if turno != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(turno)))
		query.WriteString(" WHERE LOWER(turno) = $1")
	}

	args = append(args, limit)
	query.WriteString(fmt.Sprintf(" GROUP BY zona_denuncia ORDER BY cantidad DESC LIMIT $%d", len(args)))

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zone ranking: %w", err)
	}
	defer rows.Close()

	ranking := []ZoneRisk{}
	for rows.Next() {
		var zr ZoneRisk
		if err := rows.Scan(&zr.Zona, &zr.Incidentes); err != nil {
			return nil, fmt.Errorf("failed to scan zone ranking: %w", err)
		}
		ranking = append(ranking, zr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zone ranking: %w", err)
	}

	return ranking, nil
}

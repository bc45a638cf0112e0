package complaints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Repository handles database operations for complaints
type Repository struct {
	db *pgxpool.Pool
}

var _ ComplaintsRepository = (*Repository)(nil)

// NewRepository creates a new complaints repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const denunciaColumns = `
	id, numero_parte, estado_denuncia, zona_denuncia, origen_denuncia,
	naturaleza_personal, forma_patrullaje, turno, fecha_hora_suceso,
	fecha_hora_alerta, fecha_hora_llegada, edad_victima, sexo_victima,
	distrito_victima, sexo_victimario, relacion_victima_victimario,
	tipo_denuncia, arma_instrumento, resultado_ocurrencia, lugar_ocurrencia,
	direccion_ocurrencia, comentarios, source_file, raw_row_hash,
	latitud, longitud, geocode_status, geocode_precision, geocoded_at,
	peso, created_at`

const insertDenuncia = `
	INSERT INTO denuncias (
		numero_parte, estado_denuncia, zona_denuncia, origen_denuncia,
		naturaleza_personal, forma_patrullaje, turno, fecha_hora_suceso,
		fecha_hora_alerta, fecha_hora_llegada, edad_victima, sexo_victima,
		distrito_victima, sexo_victimario, relacion_victima_victimario,
		tipo_denuncia, arma_instrumento, resultado_ocurrencia, lugar_ocurrencia,
		direccion_ocurrencia, comentarios, source_file, raw_row_hash,
		latitud, longitud, geocode_status, peso
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
	)`

func insertArgs(d *models.Denuncia) []interface{} {
	return []interface{}{
		d.NumeroParte, d.EstadoDenuncia, d.ZonaDenuncia, d.OrigenDenuncia,
		d.NaturalezaPersonal, d.FormaPatrullaje, d.Turno, d.FechaHoraSuceso,
		d.FechaHoraAlerta, d.FechaHoraLlegada, d.EdadVictima, d.SexoVictima,
		d.DistritoVictima, d.SexoVictimario, d.RelacionVictimaVictimario,
		d.TipoDenuncia, d.ArmaInstrumento, d.ResultadoOcurrencia, d.LugarOcurrencia,
		d.DireccionOcurrencia, d.Comentarios, d.SourceFile, d.RawRowHash,
		d.Latitud, d.Longitud, d.GeocodeStatus, d.Peso,
	}
}

func scanDenuncia(row pgx.Row) (*models.Denuncia, error) {
	var d models.Denuncia
	err := row.Scan(
		&d.ID, &d.NumeroParte, &d.EstadoDenuncia, &d.ZonaDenuncia, &d.OrigenDenuncia,
		&d.NaturalezaPersonal, &d.FormaPatrullaje, &d.Turno, &d.FechaHoraSuceso,
		&d.FechaHoraAlerta, &d.FechaHoraLlegada, &d.EdadVictima, &d.SexoVictima,
		&d.DistritoVictima, &d.SexoVictimario, &d.RelacionVictimaVictimario,
		&d.TipoDenuncia, &d.ArmaInstrumento, &d.ResultadoOcurrencia, &d.LugarOcurrencia,
		&d.DireccionOcurrencia, &d.Comentarios, &d.SourceFile, &d.RawRowHash,
		&d.Latitud, &d.Longitud, &d.GeocodeStatus, &d.GeocodePrecision, &d.GeocodedAt,
		&d.Peso, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts one complaint and returns its id.
func (r *Repository) Create(ctx context.Context, d *models.Denuncia) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, insertDenuncia+" RETURNING id", insertArgs(d)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create complaint: %w", err)
	}
	return id, nil
}

// The dedupe index uq_denuncias_raw_row_hash is partial; Postgres only
// infers it as the conflict arbiter when the target repeats its predicate.
const bulkConflictClause = " ON CONFLICT (raw_row_hash) WHERE raw_row_hash IS NOT NULL DO NOTHING"

// CreateBulk inserts complaints inside one transaction, skipping rows
// whose raw_row_hash is already present. Returns inserted and duplicate
// counts.
func (r *Repository) CreateBulk(ctx context.Context, rows []*models.Denuncia) (int, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, duplicates := 0, 0
	for _, d := range rows {
		tag, err := tx.Exec(ctx, insertDenuncia+bulkConflictClause, insertArgs(d)...)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to bulk insert complaint: %w", err)
		}
		if tag.RowsAffected() == 0 {
			duplicates++
		} else {
			inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit bulk insert: %w", err)
	}

	return inserted, duplicates, nil
}

// GetByID returns one complaint or pgx.ErrNoRows.
func (r *Repository) GetByID(ctx context.Context, id int) (*models.Denuncia, error) {
	d, err := scanDenuncia(r.db.QueryRow(ctx,
		"SELECT"+denunciaColumns+" FROM denuncias WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return d, nil
}

// List returns complaints matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Denuncia, error) {
	query := strings.Builder{}
	query.WriteString("SELECT" + denunciaColumns + " FROM denuncias WHERE 1=1")

	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Zona != nil {
		query.WriteString(" AND zona_denuncia = " + arg(*filter.Zona))
	}
	if filter.Tipo != "" {
		query.WriteString(" AND LOWER(tipo_denuncia) LIKE " + arg("%"+strings.ToLower(filter.Tipo)+"%"))
	}
	if filter.Turno != "" {
		query.WriteString(" AND LOWER(turno) = " + arg(strings.ToLower(filter.Turno)))
	}
	if filter.Desde != nil {
		query.WriteString(" AND fecha_hora_suceso >= " + arg(*filter.Desde))
	}
	if filter.Hasta != nil {
		hasta := *filter.Hasta
		if hasta.Hour() == 0 && hasta.Minute() == 0 && hasta.Second() == 0 {
			hasta = hasta.Add(24*time.Hour - time.Microsecond)
		}
		query.WriteString(" AND fecha_hora_suceso <= " + arg(hasta))
	}
	if filter.Q != "" {
		like := arg("%" + strings.ToLower(filter.Q) + "%")
		query.WriteString(fmt.Sprintf(
			" AND (LOWER(COALESCE(tipo_denuncia, '')) LIKE %s"+
				" OR LOWER(COALESCE(comentarios, '')) LIKE %s"+
				" OR LOWER(COALESCE(direccion_ocurrencia, '')) LIKE %s"+
				" OR LOWER(COALESCE(lugar_ocurrencia, '')) LIKE %s"+
				" OR LOWER(COALESCE(numero_parte, '')) LIKE %s)",
			like, like, like, like, like))
	}

	query.WriteString(" ORDER BY id DESC LIMIT " + arg(filter.Limit))

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	denuncias := []models.Denuncia{}
	for rows.Next() {
		d, err := scanDenuncia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		denuncias = append(denuncias, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaints: %w", err)
	}

	return denuncias, nil
}

// FetchDashboardStats builds the aggregate counters for the dashboard.
// Daily and monthly series are materialized against now's calendar.
func (r *Repository) FetchDashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		DenunciasPorZona:  map[int]int64{},
		DenunciasPorTurno: map[string]int64{},
		TiposDenuncia:     map[string]int64{},
		EstadosDenuncia:   map[string]int64{},
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM denuncias`).Scan(&stats.TotalDenuncias); err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	if err := r.groupCountsInt(ctx,
		`SELECT zona_denuncia, COUNT(*) FROM denuncias GROUP BY zona_denuncia`,
		stats.DenunciasPorZona); err != nil {
		return nil, err
	}
	if err := r.groupCountsString(ctx,
		`SELECT COALESCE(turno, 'Sin dato'), COUNT(*) FROM denuncias GROUP BY turno`,
		stats.DenunciasPorTurno); err != nil {
		return nil, err
	}
	if err := r.groupCountsString(ctx,
		`SELECT COALESCE(tipo_denuncia, 'Sin dato'), COUNT(*) FROM denuncias GROUP BY tipo_denuncia`,
		stats.TiposDenuncia); err != nil {
		return nil, err
	}
	if err := r.groupCountsString(ctx,
		`SELECT COALESCE(estado_denuncia, 'Sin dato'), COUNT(*) FROM denuncias GROUP BY estado_denuncia`,
		stats.EstadosDenuncia); err != nil {
		return nil, err
	}

	var err error
	stats.MesActualLabels, stats.MesActualCounts, err = r.currentMonthSeries(ctx, now)
	if err != nil {
		return nil, err
	}
	stats.Ult3MesesLabels, stats.Ult3MesesCounts, err = r.lastThreeMonthsSeries(ctx, now)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *Repository) groupCountsInt(ctx context.Context, query string, dst map[int]int64) error {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch grouped counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key int
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan grouped count: %w", err)
		}
		dst[key] = count
	}
	return rows.Err()
}

func (r *Repository) groupCountsString(ctx context.Context, query string, dst map[string]int64) error {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch grouped counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan grouped count: %w", err)
		}
		dst[key] = count
	}
	return rows.Err()
}

// currentMonthSeries returns a day-by-day count of the running month,
// padding days without complaints with zero.
func (r *Repository) currentMonthSeries(ctx context.Context, now time.Time) ([]string, []int64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	rows, err := r.db.Query(ctx, `
		SELECT fecha_hora_suceso::date AS dia, COUNT(*)
		FROM denuncias
		WHERE fecha_hora_suceso >= $1 AND fecha_hora_suceso < $2
		GROUP BY dia
		ORDER BY dia
	`, monthStart, nextMonth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch current month series: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, nil, fmt.Errorf("failed to scan current month series: %w", err)
		}
		counts[day.Format("2006-01-02")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate current month series: %w", err)
	}

	labels := []string{}
	series := []int64{}
	for d := monthStart; d.Before(nextMonth); d = d.AddDate(0, 0, 1) {
		labels = append(labels, fmt.Sprintf("%02d", d.Day()))
		series = append(series, counts[d.Format("2006-01-02")])
	}
	return labels, series, nil
}

// lastThreeMonthsSeries compares the running month with the two before it.
func (r *Repository) lastThreeMonthsSeries(ctx context.Context, now time.Time) ([]string, []int64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windowStart := monthStart.AddDate(0, -2, 0)
	nextMonth := monthStart.AddDate(0, 1, 0)

	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('month', fecha_hora_suceso) AS mes, COUNT(*)
		FROM denuncias
		WHERE fecha_hora_suceso >= $1 AND fecha_hora_suceso < $2
		GROUP BY mes
		ORDER BY mes
	`, windowStart, nextMonth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch monthly series: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var month time.Time
		var count int64
		if err := rows.Scan(&month, &count); err != nil {
			return nil, nil, fmt.Errorf("failed to scan monthly series: %w", err)
		}
		counts[month.Format("2006-01")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate monthly series: %w", err)
	}

	labels := []string{}
	series := []int64{}
	for m := windowStart; m.Before(nextMonth); m = m.AddDate(0, 1, 0) {
		labels = append(labels, m.Format("Jan 2006"))
		series = append(series, counts[m.Format("2006-01")])
	}
	return labels, series, nil
}

package heatmap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Repository handles database operations for the heat-map module
type Repository struct {
	db *pgxpool.Pool
}

var _ HeatmapRepository = (*Repository)(nil)

// NewRepository creates a new heatmap repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FetchPoints returns geocoded complaints matching the filter, newest first.
func (r *Repository) FetchPoints(ctx context.Context, filter PointsFilter) ([]MapPoint, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, latitud, longitud, peso, tipo_denuncia, turno,
		       COALESCE(fecha_hora_suceso, created_at), zona_denuncia, direccion_ocurrencia
		FROM denuncias
		WHERE latitud IS NOT NULL AND longitud IS NOT NULL
	`)

	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Anio != nil {
		query.WriteString(" AND EXTRACT(YEAR FROM fecha_hora_suceso) = " + arg(*filter.Anio))
	}
	if filter.Desde != nil {
		query.WriteString(" AND fecha_hora_suceso >= " + arg(*filter.Desde))
	}
	if filter.Hasta != nil {
		// inclusive end of day
		hasta := filter.Hasta.Add(24*time.Hour - time.Microsecond)
		query.WriteString(" AND fecha_hora_suceso <= " + arg(hasta))
	}
	if len(filter.Tipos) > 0 {
		query.WriteString(" AND tipo_denuncia = ANY(" + arg(filter.Tipos) + ")")
	}
	if len(filter.Turnos) > 0 {
		query.WriteString(" AND turno = ANY(" + arg(filter.Turnos) + ")")
	}
	if len(filter.Zonas) > 0 {
		query.WriteString(" AND zona_denuncia = ANY(" + arg(filter.Zonas) + ")")
	}

	query.WriteString(" ORDER BY fecha_hora_suceso DESC NULLS LAST, id DESC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT " + arg(filter.Limit))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch map points: %w", err)
	}
	defer rows.Close()

	points := []MapPoint{}
	for rows.Next() {
		var p MapPoint
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lon, &p.Peso, &p.Tipo, &p.Turno, &p.Fecha, &p.Zona, &p.Direccion); err != nil {
			return nil, fmt.Errorf("failed to scan map point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate map points: %w", err)
	}

	return points, nil
}

// FetchZones returns all operational zones ordered by id.
func (r *Repository) FetchZones(ctx context.Context) ([]models.Zona, error) {
	query := `
		SELECT id_zona, nombre, geojson, centroid_lat, centroid_lon, updated_at
		FROM zonas
		ORDER BY id_zona
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zones: %w", err)
	}
	defer rows.Close()

	zones := []models.Zona{}
	for rows.Next() {
		var z models.Zona
		if err := rows.Scan(&z.IDZona, &z.Nombre, &z.GeoJSON, &z.CentroidLat, &z.CentroidLon, &z.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}

	return zones, nil
}

// FetchFilterOptions returns the distinct values available for map filtering.
func (r *Repository) FetchFilterOptions(ctx context.Context) (*MapFilters, error) {
	filters := &MapFilters{
		Tipos:  []string{},
		Turnos: []string{},
		Zonas:  []int{},
		Anios:  []int{},
	}

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT tipo_denuncia FROM denuncias
		WHERE tipo_denuncia IS NOT NULL
		ORDER BY tipo_denuncia
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filter types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tipo string
		if err := rows.Scan(&tipo); err != nil {
			return nil, fmt.Errorf("failed to scan filter type: %w", err)
		}
		if tipo != "" {
			filters.Tipos = append(filters.Tipos, tipo)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filter types: %w", err)
	}

	turnoRows, err := r.db.Query(ctx, `
		SELECT DISTINCT turno FROM denuncias
		WHERE turno IS NOT NULL
		ORDER BY turno
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filter turns: %w", err)
	}
	defer turnoRows.Close()
	for turnoRows.Next() {
		var turno string
		if err := turnoRows.Scan(&turno); err != nil {
			return nil, fmt.Errorf("failed to scan filter turn: %w", err)
		}
		if turno != "" {
			filters.Turnos = append(filters.Turnos, turno)
		}
	}
	if err := turnoRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filter turns: %w", err)
	}

	zonaRows, err := r.db.Query(ctx, `SELECT id_zona FROM zonas ORDER BY id_zona`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filter zones: %w", err)
	}
	defer zonaRows.Close()
	for zonaRows.Next() {
		var zona int
		if err := zonaRows.Scan(&zona); err != nil {
			return nil, fmt.Errorf("failed to scan filter zone: %w", err)
		}
		filters.Zonas = append(filters.Zonas, zona)
	}
	if err := zonaRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filter zones: %w", err)
	}

	anioRows, err := r.db.Query(ctx, `
		SELECT DISTINCT EXTRACT(YEAR FROM fecha_hora_suceso)::int AS anio
		FROM denuncias
		WHERE fecha_hora_suceso IS NOT NULL
		ORDER BY anio
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filter years: %w", err)
	}
	defer anioRows.Close()
	for anioRows.Next() {
		var anio int
		if err := anioRows.Scan(&anio); err != nil {
			return nil, fmt.Errorf("failed to scan filter year: %w", err)
		}
		filters.Anios = append(filters.Anios, anio)
	}
	if err := anioRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filter years: %w", err)
	}

	var minFecha, maxFecha *time.Time
	err = r.db.QueryRow(ctx, `
		SELECT MIN(fecha_hora_suceso), MAX(fecha_hora_suceso) FROM denuncias
	`).Scan(&minFecha, &maxFecha)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch date range: %w", err)
	}
	if minFecha != nil {
		s := minFecha.Format("2006-01-02")
		filters.Fecha.Min = &s
	}
	if maxFecha != nil {
		s := maxFecha.Format("2006-01-02")
		filters.Fecha.Max = &s
	}

	return filters, nil
}

package models

import "time"

// Turn values used by the dataset
const (
	TurnoManana = "mañana"
	TurnoTarde  = "tarde"
	TurnoNoche  = "noche"
)

// GeocodeStatus values for the denuncias table
const (
	GeocodePending = "pending"
	GeocodeOK      = "ok"
	GeocodeFailed  = "failed"
)

// Denuncia represents a citizen complaint record (table denuncias)
type Denuncia struct {
	ID                        int        `json:"id" db:"id"`
	NumeroParte               *string    `json:"numero_parte,omitempty" db:"numero_parte"`
	EstadoDenuncia            *string    `json:"estado_denuncia,omitempty" db:"estado_denuncia"`
	ZonaDenuncia              int        `json:"zona_denuncia" db:"zona_denuncia"`
	OrigenDenuncia            *string    `json:"origen_denuncia,omitempty" db:"origen_denuncia"`
	NaturalezaPersonal        *string    `json:"naturaleza_personal,omitempty" db:"naturaleza_personal"`
	FormaPatrullaje           *string    `json:"forma_patrullaje,omitempty" db:"forma_patrullaje"`
	Turno                     *string    `json:"turno,omitempty" db:"turno"`
	FechaHoraSuceso           time.Time  `json:"fecha_hora_suceso" db:"fecha_hora_suceso"`
	FechaHoraAlerta           *time.Time `json:"fecha_hora_alerta,omitempty" db:"fecha_hora_alerta"`
	FechaHoraLlegada          *time.Time `json:"fecha_hora_llegada,omitempty" db:"fecha_hora_llegada"`
	EdadVictima               *int       `json:"edad_victima,omitempty" db:"edad_victima"`
	SexoVictima               *string    `json:"sexo_victima,omitempty" db:"sexo_victima"`
	DistritoVictima           *string    `json:"distrito_victima,omitempty" db:"distrito_victima"`
	SexoVictimario            *string    `json:"sexo_victimario,omitempty" db:"sexo_victimario"`
	RelacionVictimaVictimario *string    `json:"relacion_victima_victimario,omitempty" db:"relacion_victima_victimario"`
	TipoDenuncia              *string    `json:"tipo_denuncia,omitempty" db:"tipo_denuncia"`
	ArmaInstrumento           *string    `json:"arma_instrumento,omitempty" db:"arma_instrumento"`
	ResultadoOcurrencia       *string    `json:"resultado_ocurrencia,omitempty" db:"resultado_ocurrencia"`
	LugarOcurrencia           *string    `json:"lugar_ocurrencia,omitempty" db:"lugar_ocurrencia"`
	DireccionOcurrencia       *string    `json:"direccion_ocurrencia,omitempty" db:"direccion_ocurrencia"`
	Comentarios               *string    `json:"comentarios,omitempty" db:"comentarios"`
	SourceFile                *string    `json:"source_file,omitempty" db:"source_file"`
	RawRowHash                *string    `json:"raw_row_hash,omitempty" db:"raw_row_hash"`
	Latitud                   *float64   `json:"latitud,omitempty" db:"latitud"`
	Longitud                  *float64   `json:"longitud,omitempty" db:"longitud"`
	GeocodeStatus             string     `json:"geocode_status" db:"geocode_status"`
	GeocodePrecision          *string    `json:"geocode_precision,omitempty" db:"geocode_precision"`
	GeocodedAt                *time.Time `json:"geocoded_at,omitempty" db:"geocoded_at"`
	Peso                      float64    `json:"peso" db:"peso"`
	CreatedAt                 time.Time  `json:"created_at" db:"created_at"`
}

// CreateDenunciaRequest represents the payload to register a complaint
type CreateDenunciaRequest struct {
	NumeroParte         *string    `json:"numero_parte,omitempty"`
	EstadoDenuncia      *string    `json:"estado_denuncia,omitempty"`
	ZonaDenuncia        int        `json:"zona_denuncia" binding:"required,zona"`
	Turno               *string    `json:"turno,omitempty" binding:"omitempty,turno"`
	FechaHoraSuceso     time.Time  `json:"fecha_hora_suceso" binding:"required"`
	FechaHoraAlerta     *time.Time `json:"fecha_hora_alerta,omitempty"`
	FechaHoraLlegada    *time.Time `json:"fecha_hora_llegada,omitempty"`
	EdadVictima         *int       `json:"edad_victima,omitempty" binding:"omitempty,min=0,max=120"`
	SexoVictima         *string    `json:"sexo_victima,omitempty"`
	TipoDenuncia        *string    `json:"tipo_denuncia,omitempty"`
	ResultadoOcurrencia *string    `json:"resultado_ocurrencia,omitempty"`
	LugarOcurrencia     *string    `json:"lugar_ocurrencia,omitempty"`
	DireccionOcurrencia *string    `json:"direccion_ocurrencia,omitempty"`
	Comentarios         *string    `json:"comentarios,omitempty"`
	Latitud             *float64   `json:"latitud,omitempty" binding:"omitempty,latitude"`
	Longitud            *float64   `json:"longitud,omitempty" binding:"omitempty,longitude"`
}

// DashboardStats aggregates counters for the dashboard view
type DashboardStats struct {
	TotalDenuncias    int64            `json:"total_denuncias"`
	DenunciasPorZona  map[int]int64    `json:"denuncias_por_zona"`
	DenunciasPorTurno map[string]int64 `json:"denuncias_por_turno"`
	TiposDenuncia     map[string]int64 `json:"tipos_denuncia"`
	EstadosDenuncia   map[string]int64 `json:"estados_denuncia"`
	MesActualLabels   []string         `json:"mes_actual_labels"`
	MesActualCounts   []int64          `json:"mes_actual_counts"`
	Ult3MesesLabels   []string         `json:"ult_3_meses_labels"`
	Ult3MesesCounts   []int64          `json:"ult_3_meses_counts"`
}

// ImportSummary reports the outcome of a spreadsheet import
type ImportSummary struct {
	SourceFile string   `json:"source_file"`
	Total      int      `json:"total_rows"`
	Inserted   int      `json:"inserted"`
	Duplicates int      `json:"duplicates"`
	Rejected   int      `json:"rejected"`
	Errors     []string `json:"errors,omitempty"`
}

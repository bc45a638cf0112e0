package risk

// Risk levels returned by both prediction paths
const (
	NivelAlto     = "ALTO"
	NivelMedio    = "MEDIO"
	NivelBajo     = "BAJO"
	NivelSinDatos = "SIN_DATOS"
)

// Prediction methods
const (
	MethodML    = "ml"
	MethodRules = "reglas"
)

// PrediccionRequest is a risk query for a zone/turn combination
type PrediccionRequest struct {
	Zona         int     `json:"zona" binding:"required,zona"`
	Turno        string  `json:"turno" binding:"required,turno"`
	TipoDenuncia *string `json:"tipo_denuncia,omitempty"`
	DiaSemana    *int    `json:"dia_semana,omitempty" binding:"omitempty,min=0,max=6"`
}

// TipoCount is one incident type with its historical count
type TipoCount struct {
	Tipo     string `json:"tipo"`
	Cantidad int64  `json:"cantidad"`
}

// Recomendacion is a human-readable patrol suggestion
type Recomendacion struct {
	Tipo  string `json:"tipo"`
	Texto string `json:"texto"`
}

// Verdict is the full risk assessment returned to the caller
type Verdict struct {
	Zona             int             `json:"zona"`
	Turno            string          `json:"turno"`
	DiaSemana        int             `json:"dia_semana"`
	NivelRiesgo      string          `json:"nivel_riesgo"`
	Probabilidad     float64         `json:"probabilidad"`
	Incidentes       int64           `json:"incidentes_historicos"`
	DensidadDiaria   float64         `json:"densidad_diaria"`
	DenunciasEsteDia int64           `json:"denuncias_este_dia"`
	TiposComunes     []TipoCount     `json:"tipos_comunes"`
	Recomendaciones  []Recomendacion `json:"recomendaciones"`
	MetodoPrediccion string          `json:"metodo_prediccion"`
	Mensaje          string          `json:"mensaje,omitempty"`
}

// ZoneStats aggregates historical statistics for one zone
type ZoneStats struct {
	Zona           int         `json:"zona"`
	TotalDenuncias int64       `json:"total_denuncias"`
	PorTurno       []TurnCount `json:"por_turno"`
	PorTipo        []TipoCount `json:"por_tipo"`
}

// TurnCount is one turn with its historical count
type TurnCount struct {
	Turno    string `json:"turno"`
	Cantidad int64  `json:"cantidad"`
}

// ZoneRisk is one entry in the zones-at-risk ranking
type ZoneRisk struct {
	Zona        int    `json:"zona"`
	Incidentes  int64  `json:"incidentes"`
	NivelRiesgo string `json:"nivel_riesgo"`
}

// HistoricalWindow is the observed complaint history for a zone/turn.
type HistoricalWindow struct {
	Total      int64
	WindowDays int
	DayCount   int64
}

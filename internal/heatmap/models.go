package heatmap

import (
	"encoding/json"
	"time"
)

// MapPoint is a complaint projected on the map
type MapPoint struct {
	ID        int       `json:"id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Peso      float64   `json:"peso"`
	Tipo      *string   `json:"tipo,omitempty"`
	Turno     *string   `json:"turno,omitempty"`
	Fecha     time.Time `json:"fecha"`
	Zona      int       `json:"zona"`
	Direccion *string   `json:"direccion,omitempty"`
}

// MapDateRange is the min/max date window of available data
type MapDateRange struct {
	Min *string `json:"min"`
	Max *string `json:"max"`
}

// MapFilters lists the filter options available to the map UI
type MapFilters struct {
	Tipos  []string     `json:"tipos"`
	Turnos []string     `json:"turnos"`
	Zonas  []int        `json:"zonas"`
	Anios  []int        `json:"anios"`
	Fecha  MapDateRange `json:"fecha"`
}

// ZoneFeature is a simplified GeoJSON feature for an operational zone
type ZoneFeature struct {
	IDZona   int             `json:"id_zona"`
	Nombre   string          `json:"nombre"`
	GeoJSON  json.RawMessage `json:"geojson"`
	Centroid []float64       `json:"centroid"`
	Count    int             `json:"count"`
}

// PointsFilter narrows the complaint points returned for the map
type PointsFilter struct {
	Desde  *time.Time
	Hasta  *time.Time
	Tipos  []string
	Turnos []string
	Zonas  []int
	Anio   *int
	Limit  int
}

// PointsQuery binds the raw query parameters of the points endpoints
type PointsQuery struct {
	Desde string `form:"desde"`
	Hasta string `form:"hasta"`
	Tipo  string `form:"tipo"`
	Turno string `form:"turno"`
	Zona  string `form:"zona"`
	Anio  *int   `form:"anio"`
}

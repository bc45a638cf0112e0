package models

import (
	"encoding/json"
	"time"
)

// Zona represents an operational zone polygon (table zonas)
type Zona struct {
	IDZona      int             `json:"id_zona" db:"id_zona"`
	Nombre      string          `json:"nombre" db:"nombre"`
	GeoJSON     json.RawMessage `json:"geojson" db:"geojson"`
	CentroidLat float64         `json:"centroid_lat" db:"centroid_lat"`
	CentroidLon float64         `json:"centroid_lon" db:"centroid_lon"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

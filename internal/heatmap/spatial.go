package heatmap

import "encoding/json"

// Ring is the outer boundary of one polygon part as (lon,lat) vertices.
type Ring [][2]float64

// geojsonGeometry is the subset of GeoJSON this module understands.
type geojsonGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometry    json.RawMessage `json:"geometry"`
}

// NormalizeRings flattens a zone boundary into its set of outer rings.
// A Feature wrapper is unwrapped, Polygon contributes its outer ring and
// MultiPolygon the outer ring of every part. Holes are disregarded, the
// containment test below is a display-only approximation. Malformed
// geometry yields no rings rather than an error.
func NormalizeRings(raw json.RawMessage) []Ring {
	if len(raw) == 0 {
		return nil
	}

	var geom geojsonGeometry
	if err := json.Unmarshal(raw, &geom); err != nil {
		return nil
	}

	switch geom.Type {
	case "Feature":
		return NormalizeRings(geom.Geometry)
	case "Polygon":
		var coords [][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil || len(coords) == 0 {
			return nil
		}
		return []Ring{Ring(coords[0])}
	case "MultiPolygon":
		var coords [][][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return nil
		}
		rings := make([]Ring, 0, len(coords))
		for _, part := range coords {
			if len(part) > 0 {
				rings = append(rings, Ring(part[0]))
			}
		}
		return rings
	default:
		return nil
	}
}

// pointInRing runs a standard ray-casting test against a single ring.
// Horizontal edges get a tiny denominator instead of being skipped, a
// numerical-stability choice, not a geometric exactness guarantee.
// Points exactly on a boundary have undefined classification.
func pointInRing(lon, lat float64, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > lat) != (yj > lat) {
			denom := yj - yi
			if denom == 0 {
				denom = 1e-9
			}
			if lon < (xj-xi)*(lat-yi)/denom+xi {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// PointInZone reports whether the coordinate falls inside any of the
// zone's rings. A point inside any part of a MultiPolygon matches once.
func PointInZone(lon, lat float64, rings []Ring) bool {
	for _, ring := range rings {
		if pointInRing(lon, lat, ring) {
			return true
		}
	}
	return false
}

// CountPointsByZone attributes complaint points to zones by geometric
// containment and returns per-zone counts. Overlapping zones each count
// the point; a point outside every zone counts nowhere. Pure function,
// safe for concurrent use.
func CountPointsByZone(points []MapPoint, zones []ZoneFeature) map[int]int {
	counts := make(map[int]int, len(zones))

	ringSets := make([][]Ring, len(zones))
	for i, zone := range zones {
		counts[zone.IDZona] = 0
		ringSets[i] = NormalizeRings(zone.GeoJSON)
	}

	for _, point := range points {
		for i, zone := range zones {
			if PointInZone(point.Lon, point.Lat, ringSets[i]) {
				counts[zone.IDZona]++
			}
		}
	}

	return counts
}

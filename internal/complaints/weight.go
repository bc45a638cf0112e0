package complaints

import (
	"math"
	"strings"
	"time"
)

// Base heat weights per incident type. Unlisted types take the default.
var baseWeightTable = map[string]float64{
	"Homicidio":            1.00,
	"Violación sexual":     0.95,
	"Robo agravado":        0.90,
	"Lesiones graves":      0.75,
	"Amenazas":             0.70,
	"Extorsión":            0.70,
	"Secuestro":            0.70,
	"Lesiones leves":       0.60,
	"Acoso sexual":         0.60,
	"Hurto menor":          0.40,
	"Estafa":               0.40,
	"Daño a la propiedad":  0.40,
	"Pérdida de documento": 0.30,
	"Daño ambiental":       0.30,
	"Persona desaparecida": 0.30,
	"Emergencia médica":    0.30,
}

const (
	defaultBaseWeight = 0.40
	decayTauDays      = 180.0
)

// BaseWeight returns the severity weight for an incident type. The match
// is exact first, then case-insensitive containment in either direction.
func BaseWeight(tipo *string) float64 {
	if tipo == nil {
		return defaultBaseWeight
	}
	t := strings.TrimSpace(*tipo)
	if t == "" {
		return defaultBaseWeight
	}

	if w, ok := baseWeightTable[t]; ok {
		return w
	}

	low := strings.ToLower(t)
	for key, w := range baseWeightTable {
		keyLow := strings.ToLower(key)
		if strings.Contains(low, keyLow) || strings.Contains(keyLow, low) {
			return w
		}
	}

	return defaultBaseWeight
}

// ResultAdjustment nudges the weight by the incident outcome.
func ResultAdjustment(resultado *string) float64 {
	if resultado == nil {
		return 0
	}
	r := strings.ToLower(strings.TrimSpace(*resultado))
	switch {
	case r == "":
		return 0
	case strings.Contains(r, "consum"):
		return 0.10
	case strings.Contains(r, "frustr"):
		return -0.10
	case strings.Contains(r, "intent"):
		return -0.05
	case strings.Contains(r, "disuas"):
		return -0.05
	}
	return 0
}

// Decay applies exponential time decay with a tau of 180 days, which puts
// the half-life near 125 days.
func Decay(fechaSuceso time.Time, now time.Time) float64 {
	if fechaSuceso.IsZero() {
		return 1.0
	}
	deltaDays := now.Sub(fechaSuceso).Hours() / 24
	if deltaDays < 0 {
		deltaDays = 0
	}
	return math.Exp(-deltaDays / decayTauDays)
}

// ComputeHeatWeight returns the map intensity for a complaint, clamped to
// [0,1] and rounded to two decimals.
func ComputeHeatWeight(tipo, resultado *string, fechaSuceso time.Time, now time.Time) float64 {
	w := (BaseWeight(tipo) + ResultAdjustment(resultado)) * Decay(fechaSuceso, now)
	w = math.Max(0, math.Min(1, w))
	return math.Round(w*100) / 100
}

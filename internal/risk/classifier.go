package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Feature vector layout: [zona, turno, tipo, hora, dia_semana, mes]
const featureCount = 6

// Turn and hour-of-day encodings. These must match the encoder table the
// offline training step persisted; the artifact carries its own turn table
// so a retrained model cannot silently skew against this file.
var defaultTurnCodes = map[string]int{
	"mañana": 0,
	"tarde":  1,
	"noche":  2,
}

var hourProxy = map[string]int{
	"mañana": 6,
	"tarde":  14,
	"noche":  22,
}

// unknownTipoKey is the reserved label for unseen or empty incident types
const unknownTipoKey = "DESCONOCIDO"

// treeNode is one node of a serialized decision tree. Leaf nodes carry a
// class index in Class and have Feature == -1.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
}

// artifact is the on-disk JSON layout of a trained ensemble plus the
// encoder tables it was trained with.
type artifact struct {
	Version  string   `json:"version"`
	Classes  []string `json:"classes"`
	Encoders struct {
		Turnos map[string]int `json:"turnos"`
		Tipos  map[string]int `json:"tipos"`
	} `json:"encoders"`
	Trees [][]treeNode `json:"trees"`
}

// Classifier is an immutable handle over a loaded model artifact.
// Constructed once during initialization and safe for concurrent use.
type Classifier struct {
	version   string
	classes   []string
	turnCodes map[string]int
	tipoCodes map[string]int
	trees     [][]treeNode
}

// LoadClassifier reads a model artifact from disk. A missing file is not
// an error condition for the caller: it returns (nil, nil) so the service
// runs permanently in rule-based mode.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read classifier artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse classifier artifact: %w", err)
	}

	if len(art.Trees) == 0 || len(art.Classes) == 0 {
		return nil, fmt.Errorf("classifier artifact %s has no trees or classes", path)
	}

	turnCodes := art.Encoders.Turnos
	if len(turnCodes) == 0 {
		turnCodes = defaultTurnCodes
	}

	return &Classifier{
		version:   art.Version,
		classes:   art.Classes,
		turnCodes: turnCodes,
		tipoCodes: art.Encoders.Tipos,
		trees:     art.Trees,
	}, nil
}

// Version returns the artifact version string.
func (c *Classifier) Version() string {
	return c.version
}

// EncodeFeatures builds the model input vector for a query.
func (c *Classifier) EncodeFeatures(zona int, turno string, tipo string, diaSemana, mes int) [featureCount]float64 {
	turno = strings.ToLower(strings.TrimSpace(turno))

	turnoCode, ok := c.turnCodes[turno]
	if !ok {
		turnoCode = 0
	}

	hora, ok := hourProxy[turno]
	if !ok {
		hora = 12
	}

	tipoCode := 0
	if code, ok := c.tipoCodes[unknownTipoKey]; ok {
		tipoCode = code
	}
	if tipo != "" {
		if code, ok := c.tipoCodes[tipo]; ok {
			tipoCode = code
		}
	}

	return [featureCount]float64{
		float64(zona),
		float64(turnoCode),
		float64(tipoCode),
		float64(hora),
		float64(diaSemana),
		float64(mes),
	}
}

// Predict runs the ensemble over a feature vector and returns the winning
// class with the vote share as a confidence proxy. Any structural problem
// in the artifact surfaces as an error; the caller decides the fallback.
func (c *Classifier) Predict(features [featureCount]float64) (string, float64, error) {
	votes := make([]int, len(c.classes))

	for i, tree := range c.trees {
		class, err := evalTree(tree, features)
		if err != nil {
			return "", 0, fmt.Errorf("tree %d: %w", i, err)
		}
		if class < 0 || class >= len(c.classes) {
			return "", 0, fmt.Errorf("tree %d voted for unknown class %d", i, class)
		}
		votes[class]++
	}

	best := 0
	for i := range votes {
		if votes[i] > votes[best] {
			best = i
		}
	}

	level := c.classes[best]
	switch level {
	case NivelAlto, NivelMedio, NivelBajo:
	default:
		return "", 0, fmt.Errorf("model produced unknown risk level %q", level)
	}

	confidence := float64(votes[best]) / float64(len(c.trees))
	return level, confidence, nil
}

func evalTree(nodes []treeNode, features [featureCount]float64) (int, error) {
	if len(nodes) == 0 {
		return 0, fmt.Errorf("empty tree")
	}

	idx := 0
	for steps := 0; steps <= len(nodes); steps++ {
		if idx < 0 || idx >= len(nodes) {
			return 0, fmt.Errorf("node index %d out of range", idx)
		}

		node := nodes[idx]
		if node.Feature < 0 {
			return node.Class, nil
		}
		if node.Feature >= featureCount {
			return 0, fmt.Errorf("node %d references feature %d", idx, node.Feature)
		}

		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}

	return 0, fmt.Errorf("tree traversal did not terminate")
}

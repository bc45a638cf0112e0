package complaints

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v2"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Columns every intake sheet must carry
var requiredColumns = []string{
	"numero_parte", "estado_denuncia", "zona_denuncia",
	"origen_denuncia", "naturaleza_personal", "forma_patrullaje",
	"turno", "fecha_hora_suceso", "fecha_hora_alerta",
	"fecha_hora_llegada", "edad_victima", "sexo_victima",
	"distrito_victima",
}

var optionalColumns = []string{
	"sexo_victimario", "relacion_victima_victimario", "tipo_denuncia",
	"arma_instrumento", "resultado_ocurrencia", "lugar_ocurrencia",
	"direccion_ocurrencia", "comentarios",
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// ParsedRow is one spreadsheet row keyed by header name, keeping its
// 1-based sheet line for error reporting.
type ParsedRow struct {
	Line  int
	Cells map[string]string
}

// ReadSpreadsheet decodes an uploaded XLSX or CSV file into header-keyed
// rows. CSV delimiters , and ; are both accepted.
func ReadSpreadsheet(filename string, data []byte) ([]ParsedRow, error) {
	name := strings.ToLower(filename)

	var raw [][]string
	var err error
	switch {
	case strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls"):
		raw, err = readXLSXRows(data)
	case strings.HasSuffix(name, ".csv"):
		raw, err = readCSVRows(data)
	default:
		return nil, fmt.Errorf("formato no soportado, sube .xlsx/.xls/.csv")
	}
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("el archivo no tiene filas")
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	missing := []string{}
	for _, col := range requiredColumns {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("columnas faltantes: %s", strings.Join(missing, ", "))
	}

	rows := make([]ParsedRow, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		if isEmptyRow(cells) {
			continue
		}
		row := ParsedRow{
			// header occupies line 1
			Line:  i + 2,
			Cells: make(map[string]string, len(header)),
		}
		for j, h := range header {
			if h == "" {
				continue
			}
			value := ""
			if j < len(cells) {
				value = strings.TrimSpace(cells[j])
			}
			row.Cells[h] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// BuildDenuncia validates one parsed row and converts it into a record
// ready for insertion. Errors carry the sheet line number.
func BuildDenuncia(row ParsedRow, sourceFile string) (*models.Denuncia, error) {
	fail := func(format string, args ...interface{}) (*models.Denuncia, error) {
		return nil, fmt.Errorf("fila %d: %s", row.Line, fmt.Sprintf(format, args...))
	}

	zona, err := requiredInt(row.Cells, "zona_denuncia")
	if err != nil {
		return fail("%v", err)
	}
	if zona < 1 || zona > 7 {
		return fail("zona_denuncia fuera de rango (1..7)")
	}

	d := &models.Denuncia{
		ZonaDenuncia:  zona,
		SourceFile:    &sourceFile,
		GeocodeStatus: models.GeocodePending,
	}

	for _, col := range []struct {
		name string
		dst  **string
	}{
		{"numero_parte", &d.NumeroParte},
		{"estado_denuncia", &d.EstadoDenuncia},
		{"origen_denuncia", &d.OrigenDenuncia},
		{"naturaleza_personal", &d.NaturalezaPersonal},
		{"forma_patrullaje", &d.FormaPatrullaje},
		{"turno", &d.Turno},
		{"sexo_victima", &d.SexoVictima},
		{"distrito_victima", &d.DistritoVictima},
	} {
		value, err := requiredString(row.Cells, col.name)
		if err != nil {
			return fail("%v", err)
		}
		*col.dst = &value
	}

	suceso, err := requiredDateTime(row.Cells, "fecha_hora_suceso")
	if err != nil {
		return fail("%v", err)
	}
	d.FechaHoraSuceso = suceso

	alerta, err := requiredDateTime(row.Cells, "fecha_hora_alerta")
	if err != nil {
		return fail("%v", err)
	}
	d.FechaHoraAlerta = &alerta

	llegada, err := requiredDateTime(row.Cells, "fecha_hora_llegada")
	if err != nil {
		return fail("%v", err)
	}
	d.FechaHoraLlegada = &llegada

	edad, err := requiredInt(row.Cells, "edad_victima")
	if err != nil {
		return fail("%v", err)
	}
	d.EdadVictima = &edad

	d.SexoVictimario = optionalString(row.Cells, "sexo_victimario")
	d.RelacionVictimaVictimario = optionalString(row.Cells, "relacion_victima_victimario")
	d.TipoDenuncia = optionalString(row.Cells, "tipo_denuncia")
	d.ArmaInstrumento = optionalString(row.Cells, "arma_instrumento")
	d.ResultadoOcurrencia = optionalString(row.Cells, "resultado_ocurrencia")
	d.LugarOcurrencia = optionalString(row.Cells, "lugar_ocurrencia")
	d.DireccionOcurrencia = optionalString(row.Cells, "direccion_ocurrencia")
	d.Comentarios = optionalString(row.Cells, "comentarios")

	hash := rowHash(row.Cells)
	d.RawRowHash = &hash

	return d, nil
}

// rowHash fingerprints the normalized cell values of the known columns so
// re-imports of the same sheet skip already-loaded rows.
func rowHash(cells map[string]string) string {
	parts := make([]string, 0, len(requiredColumns)+len(optionalColumns))
	for _, col := range requiredColumns {
		parts = append(parts, strings.ToLower(strings.TrimSpace(cells[col])))
	}
	for _, col := range optionalColumns {
		parts = append(parts, strings.ToLower(strings.TrimSpace(cells[col])))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func readXLSXRows(data []byte) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("el archivo no tiene hojas")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks ; over , when the first line carries more of them.
func detectDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func optionalString(cells map[string]string, col string) *string {
	v := strings.TrimSpace(cells[col])
	if v == "" {
		return nil
	}
	return &v
}

func requiredString(cells map[string]string, col string) (string, error) {
	v := strings.TrimSpace(cells[col])
	if v == "" {
		return "", fmt.Errorf("%s es requerido", col)
	}
	return v, nil
}

func requiredInt(cells map[string]string, col string) (int, error) {
	v := strings.TrimSpace(cells[col])
	if v == "" {
		return 0, fmt.Errorf("%s es requerido", col)
	}
	// spreadsheet numerics often arrive as "34.0"
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %s", col, v)
	}
	return n, nil
}

func requiredDateTime(cells map[string]string, col string) (time.Time, error) {
	v := strings.TrimSpace(cells[col])
	if v == "" {
		return time.Time{}, fmt.Errorf("%s es requerido", col)
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha/hora inválida: %s", v)
}

package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	billing "enercom-billing/internal/billing/domain"
	participant "enercom-billing/internal/participant/domain"
)

// ErrEmptyWorkbook is returned when a workbook has no data rows.
var ErrEmptyWorkbook = errors.New("ingest: workbook has no data rows")

// ErrMissingColumns is returned when required header columns are absent.
var ErrMissingColumns = errors.New("ingest: missing required columns")

// Header column names as delivered by the community operator's export.
const (
	columnEAN                    = "ean"
	columnMonth                  = "mois"
	columnSharedVolume           = "volume_partage"
	columnComplementaryVolume    = "volume_complementaire"
	columnSharedInjection        = "injection_partagee"
	columnComplementaryInjection = "injection_complementaire"
)

// Dataset maps EAN meter code to the monthly volumes read for that meter.
type Dataset map[string]map[billing.MonthKey]billing.MonthlyVolumes

// RowError describes a skipped workbook row.
type RowError struct {
	Row    int
	Reason string
}

// ReadResult is the outcome of parsing one workbook.
type ReadResult struct {
	Volumes Dataset
	Skipped []RowError
}

// Rows returns the number of stored participant-month rows.
func (r *ReadResult) Rows() int {
	count := 0
	for _, months := range r.Volumes {
		count += len(months)
	}
	return count
}

// ReadMonthlyVolumes parses a meter-readings workbook: one row per
// participant-month keyed by EAN and month. Blank or malformed numeric
// cells normalize to zero; rows with a bad EAN or month are skipped and
// reported, not fatal. A later row for the same EAN and month overwrites
// the earlier one.
func ReadMonthlyVolumes(r io.Reader) (*ReadResult, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ingest: read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ReadResult{Volumes: make(Dataset)}
	for i, row := range rows[1:] {
		rowNum := i + 2

		ean := strings.TrimSpace(cell(row, columns[columnEAN]))
		if !participant.ValidEAN(ean) {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "invalid ean"})
			continue
		}
		month, err := billing.ParseMonthKey(strings.TrimSpace(cell(row, columns[columnMonth])))
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "invalid month"})
			continue
		}

		volumes := billing.MonthlyVolumes{
			SharedVolume:           parseQuantity(cell(row, columns[columnSharedVolume])),
			ComplementaryVolume:    parseQuantity(cell(row, columns[columnComplementaryVolume])),
			SharedInjection:        parseQuantity(cell(row, columns[columnSharedInjection])),
			ComplementaryInjection: parseQuantity(cell(row, columns[columnComplementaryInjection])),
		}

		if result.Volumes[ean] == nil {
			result.Volumes[ean] = make(map[billing.MonthKey]billing.MonthlyVolumes)
		}
		result.Volumes[ean][month] = volumes
	}
	return result, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnEAN, columnMonth} {
		if _, ok := columns[required]; !ok {
			return nil, ErrMissingColumns
		}
	}
	// Volume columns may be absent entirely; absent means zero.
	for _, optional := range []string{columnSharedVolume, columnComplementaryVolume, columnSharedInjection, columnComplementaryInjection} {
		if _, ok := columns[optional]; !ok {
			columns[optional] = -1
		}
	}
	return columns, nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}

// parseQuantity normalizes a numeric cell: blank or malformed values become
// zero, comma decimal separators are accepted.
func parseQuantity(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

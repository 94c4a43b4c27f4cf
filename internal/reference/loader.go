package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fieldsurvey/pkg/types"

	"github.com/xuri/excelize/v2"
)

var (
	idHeaders          = []string{"account id", "account_id", "account no", "account number", "account", "id"}
	zoneHeaders        = []string{"zone"}
	circleHeaders      = []string{"circle"}
	divisionHeaders    = []string{"division"}
	subDivisionHeaders = []string{"sub-division", "sub division", "subdivision", "sub_division"}
)

// LoadResult reports what a load kept and skipped.
type LoadResult struct {
	Records    []types.AccountRecord
	Skipped    int
	Duplicates int
}

// LoadFile reads the reference table from an .xlsx or .csv file. sheet
// selects the worksheet of a workbook; empty means the first one.
func LoadFile(path, sheet string) (*Store, *LoadResult, error) {
	result, err := ReadFile(path, sheet)
	if err != nil {
		return nil, nil, err
	}

	return New(result.Records), result, nil
}

func ReadFile(path, sheet string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference file: %w", err)
	}
	defer f.Close()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(f, sheet)
	case ".csv":
		rows, err = readCSV(f)
	default:
		return nil, fmt.Errorf("unsupported reference file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read reference file %s: %w", path, err)
	}

	return ParseRows(rows)
}

func readWorkbook(r io.Reader, sheet string) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return nil, errors.New("no worksheet found")
	}

	return file.GetRows(sheet)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// ParseRows maps a header row plus data rows onto account records. Rows
// with a missing or non-numeric identifier are skipped. When an identifier
// repeats, the first row wins and the rest are counted as duplicates.
func ParseRows(rows [][]string) (*LoadResult, error) {
	if len(rows) == 0 {
		return nil, errors.New("reference table is empty")
	}

	header := rows[0]
	idIdx := headerIndex(header, idHeaders)
	if idIdx < 0 {
		return nil, errors.New("reference table has no account id column")
	}

	cols := map[string]int{
		"ZONE":         headerIndex(header, zoneHeaders),
		"CIRCLE":       headerIndex(header, circleHeaders),
		"DIVISION":     headerIndex(header, divisionHeaders),
		"SUB-DIVISION": headerIndex(header, subDivisionHeaders),
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("reference table has no %s column", name)
		}
	}

	result := &LoadResult{Records: make([]types.AccountRecord, 0, len(rows)-1)}
	seen := make(map[string]struct{}, len(rows)-1)
	for _, row := range rows[1:] {
		id := NormalizeID(cellValue(row, idIdx))
		if !IsDigits(id) || len(id) > MaxIDLength {
			result.Skipped++
			continue
		}
		if _, ok := seen[id]; ok {
			result.Duplicates++
			continue
		}
		seen[id] = struct{}{}

		result.Records = append(result.Records, types.AccountRecord{
			ID:          id,
			Zone:        cellValue(row, cols["ZONE"]),
			Circle:      cellValue(row, cols["CIRCLE"]),
			Division:    cellValue(row, cols["DIVISION"]),
			SubDivision: cellValue(row, cols["SUB-DIVISION"]),
		})
	}

	return result, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func headerIndex(header []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, h := range header {
			if normalizeHeader(h) == candidate {
				return i
			}
		}
	}
	return -1
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/internal"
	"gofold/ports"
)

// DataReader loads a labeled dataset from an Excel or CSV file. One
// named column carries the outcome label; every other column becomes a
// feature, typed numeric when all of its non-empty cells parse as
// numbers and categorical otherwise.
type DataReader struct {
	filePath    string
	fileType    string // "xlsx" or "csv"
	labelColumn string
	sheet       string
	logger      *internal.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath, labelColumn string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath:    filePath,
		fileType:    fileType,
		labelColumn: labelColumn,
		sheet:       "Sheet1",
		logger:      internal.DefaultLogger,
	}
}

// ReadDataset reads the file into a construction-validated dataset
func (r *DataReader) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have a header row and at least one data row", r.fileType)
	}

	r.logger.Debug("reader: %d rows (incl. header) from %s", len(rows), r.filePath)
	return r.buildDataset(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; padded below
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func (r *DataReader) buildDataset(rows [][]string) (*dataset.Dataset, error) {
	headers := rows[0]
	labelIdx := -1
	for i, h := range headers {
		if strings.TrimSpace(h) == r.labelColumn {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, core.NewInvalidParameterError("label_column",
			"not found in header: "+r.labelColumn)
	}

	data := rows[1:]

	// A feature column is numeric only if every non-empty cell parses
	numeric := make([]bool, len(headers))
	for col := range headers {
		numeric[col] = true
		seen := false
		for _, row := range data {
			cell := cellAt(row, col)
			if cell == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric[col] = false
				break
			}
		}
		if !seen {
			numeric[col] = false
		}
	}

	var features []dataset.FeatureSpec
	featureCols := make([]int, 0, len(headers)-1)
	for col, h := range headers {
		if col == labelIdx {
			continue
		}
		kind := dataset.KindCategorical
		if numeric[col] {
			kind = dataset.KindNumeric
		}
		features = append(features, dataset.FeatureSpec{Name: strings.TrimSpace(h), Kind: kind})
		featureCols = append(featureCols, col)
	}

	labelSet := make(map[dataset.Label]struct{})
	for _, row := range data {
		l := dataset.Label(cellAt(row, labelIdx))
		if l == "" {
			return nil, core.NewInvalidParameterError("records", "row with empty label")
		}
		labelSet[l] = struct{}{}
	}
	labels := make([]dataset.Label, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	schema, err := dataset.NewSchema(features, labels)
	if err != nil {
		return nil, err
	}

	records := make([]dataset.Record, len(data))
	for i, row := range data {
		values := make([]dataset.Value, len(featureCols))
		for j, col := range featureCols {
			cell := cellAt(row, col)
			if numeric[col] {
				if cell == "" {
					values[j] = dataset.MissingNumeric()
				} else {
					v, _ := strconv.ParseFloat(cell, 64)
					values[j] = dataset.Numeric(v)
				}
			} else {
				values[j] = dataset.Categorical(cell)
			}
		}
		records[i] = dataset.Record{Values: values, Label: dataset.Label(cellAt(row, labelIdx))}
	}

	return dataset.New(schema, records)
}

// cellAt pads ragged rows: spreadsheet readers drop trailing empties
func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

var _ ports.DatasetReader = (*DataReader)(nil)

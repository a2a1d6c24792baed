package msdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ColumnLayout maps source table headers to point roles. X and Intensity
// are required; the rest are optional and skipped when empty or missing
// from the header row. Header matching is case-insensitive.
type ColumnLayout struct {
	X          string
	Y          string
	Intensity  string
	Annotation string
	MZ         string
	ProductMZ  string
}

// DefaultLayout matches the conventional mass-spectrometry column names.
func DefaultLayout() ColumnLayout {
	return ColumnLayout{
		X:          "RT",
		Y:          "mz",
		Intensity:  "inty",
		Annotation: "Annotation",
		MZ:         "mz",
		ProductMZ:  "product_mz",
	}
}

// ReadCSV parses an observation table with a header row.
func ReadCSV(r io.Reader, layout ColumnLayout) (*Table, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRows(rows, layout)
}

// ReadXLSX parses an observation table from one sheet of an xlsx workbook.
// An empty sheet name selects the first sheet.
func ReadXLSX(path, sheet string, layout ColumnLayout) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return tableFromRows(rows, layout)
}

// ReadFeaturesCSV parses a feature-boundary table with the columns
// leftWidth, rightWidth, apexIntensity and optional q_value.
func ReadFeaturesCSV(r io.Reader) ([]Feature, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read features csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("feature table has no header row")
	}
	cols := headerIndex(rows[0])
	left, ok := cols["leftwidth"]
	if !ok {
		return nil, fmt.Errorf("feature table missing leftWidth column")
	}
	right, ok := cols["rightwidth"]
	if !ok {
		return nil, fmt.Errorf("feature table missing rightWidth column")
	}
	apex, ok := cols["apexintensity"]
	if !ok {
		return nil, fmt.Errorf("feature table missing apexIntensity column")
	}
	qcol, hasQ := cols["q_value"]

	out := make([]Feature, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ft := Feature{QValue: nan}
		if ft.LeftWidth, err = cellFloat(row, left); err != nil {
			return nil, fmt.Errorf("feature row %d: %w", i+1, err)
		}
		if ft.RightWidth, err = cellFloat(row, right); err != nil {
			return nil, fmt.Errorf("feature row %d: %w", i+1, err)
		}
		if ft.ApexIntensity, err = cellFloat(row, apex); err != nil {
			return nil, fmt.Errorf("feature row %d: %w", i+1, err)
		}
		if hasQ {
			if v, err := cellFloat(row, qcol); err == nil {
				ft.QValue = v
			}
		}
		out = append(out, ft)
	}
	return out, nil
}

func tableFromRows(rows [][]string, layout ColumnLayout) (*Table, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("table has no header row")
	}
	cols := headerIndex(rows[0])
	find := func(name string) (int, bool) {
		if name == "" {
			return 0, false
		}
		i, ok := cols[strings.ToLower(name)]
		return i, ok
	}

	xi, ok := find(layout.X)
	if !ok {
		return nil, fmt.Errorf("table missing x column %q", layout.X)
	}
	ii, ok := find(layout.Intensity)
	if !ok {
		return nil, fmt.Errorf("table missing intensity column %q", layout.Intensity)
	}
	yi, hasY := find(layout.Y)
	ai, hasAnn := find(layout.Annotation)
	mi, hasMZ := find(layout.MZ)
	pi, hasProd := find(layout.ProductMZ)

	t := &Table{
		Points:        make([]Point, 0, len(rows)-1),
		HasAnnotation: hasAnn,
		HasMZ:         hasMZ,
		HasProductMZ:  hasProd,
	}
	for r, row := range rows[1:] {
		p := Point{MZ: nan, ProductMZ: nan}
		var err error
		if p.X, err = cellFloat(row, xi); err != nil {
			return nil, fmt.Errorf("row %d: %w", r+1, err)
		}
		if p.Intensity, err = cellFloat(row, ii); err != nil {
			return nil, fmt.Errorf("row %d: %w", r+1, err)
		}
		if p.Intensity < 0 {
			return nil, fmt.Errorf("row %d: negative intensity %v", r+1, p.Intensity)
		}
		if hasY {
			if p.Y, err = cellFloat(row, yi); err != nil {
				return nil, fmt.Errorf("row %d: %w", r+1, err)
			}
		}
		if hasAnn && ai < len(row) {
			p.Annotation = strings.TrimSpace(row[ai])
		}
		if hasMZ {
			if v, err := cellFloat(row, mi); err == nil {
				p.MZ = v
			}
		}
		if hasProd {
			if v, err := cellFloat(row, pi); err == nil {
				p.ProductMZ = v
			}
		}
		t.Points = append(t.Points, p)
	}
	return t, nil
}

func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return m
}

func cellFloat(row []string, i int) (float64, error) {
	if i >= len(row) {
		return 0, fmt.Errorf("short row, missing column %d", i)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", row[i], err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("non-finite value in column %d", i)
	}
	return v, nil
}

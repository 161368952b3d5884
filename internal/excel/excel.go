package excel

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"office-stats/internal/models"
	"office-stats/internal/table"
)

// DefaultSheet is the sheet read when the caller does not name one.
const DefaultSheet = "Offices"

type field int

const (
	fieldNone field = iota
	fieldOffice
	fieldCount
	fieldLat
	fieldLon
	fieldTotal
	fieldAverage
	fieldMax
	fieldFarthest
	fieldMethod
)

// classify maps a header cell onto a statistics field. It accepts both the
// raw snake_case names and the labeled headers written by WriteTable.
func classify(header string) field {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case h == "":
		return fieldNone
	case strings.Contains(h, "farthest"):
		return fieldFarthest
	case strings.Contains(h, "method"):
		return fieldMethod
	case strings.Contains(h, "office"):
		return fieldOffice
	case strings.Contains(h, "school"):
		return fieldCount
	case strings.Contains(h, "lat"):
		return fieldLat
	case strings.Contains(h, "lon"), strings.Contains(h, "lng"):
		return fieldLon
	case strings.Contains(h, "total"):
		return fieldTotal
	case strings.Contains(h, "average"), strings.Contains(h, "avg"):
		return fieldAverage
	case strings.Contains(h, "max"):
		return fieldMax
	}
	return fieldNone
}

func parseNumber(val string) (float64, error) {
	// Replace comma with dot for locales that use a decimal comma
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, eris.New("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func OpenFile(filename string) (*excelize.File, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "excel: open %s", filename)
	}
	return f, nil
}

// ReadOptions tunes ReadOffices.
type ReadOptions struct {
	// Standardize folds office name variants with models.StandardizeOfficeName.
	Standardize bool
}

// ReadResult is the outcome of reading an offices sheet.
type ReadResult struct {
	Offices map[string]models.OfficeStatistics
	// Skipped lists 1-based sheet rows that were dropped because a number
	// could not be parsed.
	Skipped []int
}

// ReadOffices reads one office per row below the header row. Blank cells
// leave the field unset. Rows without an office name are ignored and rows
// with unparsable numbers are skipped.
func ReadOffices(f *excelize.File, sheetName string, opts ReadOptions) (*ReadResult, error) {
	if sheetName == "" {
		sheetName = DefaultSheet
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, eris.Wrapf(err, "excel: read sheet %s", sheetName)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("excel: sheet %s is empty", sheetName)
	}

	cols := map[field]int{}
	for i, h := range rows[0] {
		if fl := classify(h); fl != fieldNone {
			if _, seen := cols[fl]; !seen {
				cols[fl] = i
			}
		}
	}
	if _, ok := cols[fieldOffice]; !ok {
		return nil, eris.Errorf("excel: sheet %s has no office column", sheetName)
	}

	res := &ReadResult{Offices: map[string]models.OfficeStatistics{}}
	for i, row := range rows {
		if i == 0 {
			continue // Skip header
		}
		get := func(fl field) string {
			idx, ok := cols[fl]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := get(fieldOffice)
		if name == "" {
			continue
		}
		if opts.Standardize {
			name = models.StandardizeOfficeName(name)
		}
		if _, dup := res.Offices[name]; dup {
			return nil, eris.Errorf("excel: office %q appears more than once (row %d)", name, i+1)
		}

		s, ok := parseRow(get)
		if !ok {
			res.Skipped = append(res.Skipped, i+1)
			continue
		}
		res.Offices[name] = s
	}
	return res, nil
}

func parseRow(get func(field) string) (models.OfficeStatistics, bool) {
	var s models.OfficeStatistics
	ok := true
	num := func(fl field) *float64 {
		raw := get(fl)
		if raw == "" {
			return nil
		}
		v, err := parseNumber(raw)
		if err != nil {
			ok = false
			return nil
		}
		return &v
	}

	if c := num(fieldCount); c != nil {
		if *c != math.Trunc(*c) {
			ok = false
		} else {
			s.SchoolCount = models.Ptr(int(*c))
		}
	}
	s.Latitude = num(fieldLat)
	s.Longitude = num(fieldLon)
	s.TotalDistance = num(fieldTotal)
	s.AverageDistance = num(fieldAverage)
	s.MaxDistance = num(fieldMax)
	if v := get(fieldFarthest); v != "" {
		s.FarthestSchool = models.Ptr(v)
	}
	if v := get(fieldMethod); v != "" {
		s.DistanceMethod = models.Ptr(models.DistanceMethod(strings.ToLower(v)))
	}
	return s, ok
}

// WriteTable writes t as a single-sheet workbook to w.
func WriteTable(w io.Writer, t *table.Table, sheetName string) error {
	f, err := newWorkbook(t, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "excel: write workbook")
	}
	return nil
}

// SaveTable writes t as a single-sheet workbook at path.
func SaveTable(path string, t *table.Table, sheetName string) error {
	f, err := newWorkbook(t, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "excel: save %s", path)
	}
	return nil
}

func newWorkbook(t *table.Table, sheetName string) (_ *excelize.File, err error) {
	if t == nil {
		return nil, eris.New("excel: no table to write")
	}
	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := excelize.NewFile()
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "excel: new sheet")
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "excel: stream writer")
	}

	header := make([]interface{}, len(t.Columns))
	for i, label := range t.Header() {
		header[i] = label
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, eris.Wrap(err, "excel: write header")
	}

	for i, r := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := make([]interface{}, len(r.Cells))
		for j, c := range r.Cells {
			row[j] = c.Value()
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, eris.Wrapf(err, "excel: write row %d", i+2)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, eris.Wrap(err, "excel: flush")
	}

	f.SetActiveSheet(index)
	// Delete default sheet if exists
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	return f, nil
}

package shapeio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// Sentinel errors wrapped by IngestionError.
var (
	ErrEmptyInput   = errors.New("no point rows in input")
	ErrMalformedRow = errors.New("malformed row")
)

// IngestionError reports why a point table could not be loaded. Line is the
// 1-based input line of the offending row, or 0 when the problem is not tied
// to a row.
type IngestionError struct {
	Line int
	Err  error
}

func (e *IngestionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ingestion failed at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("ingestion failed: %v", e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// pointRow is one parsed input row.
type pointRow struct {
	pathID     float64
	polylineID float64
	pt         geometry.Point
}

// ReadCSV parses rows of "path_id,polyline_id,x,y" into a PathCollection.
//
// Rows are grouped by ascending path_id, then by ascending polyline_id
// within each path. Within a polyline the rows keep their input order. Ids
// are numeric and need not be contiguous.
//
// Any unreadable row, a row with other than four fields, a non-numeric or
// non-finite value, or an input without rows yields an *IngestionError.
func ReadCSV(r io.Reader) (geometry.PathCollection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var rows []pointRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &IngestionError{Line: pe.Line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, pe.Err)}
			}
			return nil, &IngestionError{Err: err}
		}

		line, _ := cr.FieldPos(0)
		row, err := parseRow(record)
		if err != nil {
			return nil, &IngestionError{Line: line, Err: err}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &IngestionError{Err: ErrEmptyInput}
	}
	return group(rows), nil
}

// ParseCSV is ReadCSV over an in-memory string.
func ParseCSV(s string) (geometry.PathCollection, error) {
	return ReadCSV(strings.NewReader(s))
}

func parseRow(record []string) (pointRow, error) {
	var v [4]float64
	names := [4]string{"path_id", "polyline_id", "x", "y"}
	for i, field := range record {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return pointRow{}, fmt.Errorf("%w: %s %q is not a number", ErrMalformedRow, names[i], field)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return pointRow{}, fmt.Errorf("%w: %s %q is not finite", ErrMalformedRow, names[i], field)
		}
		v[i] = f
	}
	return pointRow{pathID: v[0], polylineID: v[1], pt: geometry.Point{v[2], v[3]}}, nil
}

// group sorts rows into paths and polylines. The sort is stable, so points
// of the same polyline keep their input order.
func group(rows []pointRow) geometry.PathCollection {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].pathID != rows[j].pathID {
			return rows[i].pathID < rows[j].pathID
		}
		return rows[i].polylineID < rows[j].polylineID
	})

	var coll geometry.PathCollection
	for i, row := range rows {
		newPath := i == 0 || row.pathID != rows[i-1].pathID
		if newPath {
			coll = append(coll, geometry.Path{ID: row.pathID})
		}
		path := &coll[len(coll)-1]
		if newPath || row.polylineID != rows[i-1].polylineID {
			path.Polylines = append(path.Polylines, nil)
		}
		last := len(path.Polylines) - 1
		path.Polylines[last] = append(path.Polylines[last], row.pt)
	}
	return coll
}

// WriteCSV writes one "i,j,x,y" record per point, where i is the group index
// and j the point index within the group. Points with a non-finite
// coordinate are skipped and do not consume an index.
func WriteCSV(w io.Writer, coll geometry.PathCollection) error {
	cw := csv.NewWriter(w)
	for i, path := range coll {
		for _, p := range path.Polylines {
			for j, pt := range p.Finite() {
				record := []string{
					strconv.Itoa(i),
					strconv.Itoa(j),
					strconv.FormatFloat(pt[0], 'g', -1, 64),
					strconv.FormatFloat(pt[1], 'g', -1, 64),
				}
				if err := cw.Write(record); err != nil {
					return fmt.Errorf("failed to write csv record: %w", err)
				}
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

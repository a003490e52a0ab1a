package timesheet

import (
	"strconv"
	"strings"
)

// CellKind discriminates the three value shapes a sheet cell can carry.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// CellValue is a tagged cell value. The Sheets API hands back untyped JSON
// values; everything downstream works on this closed variant instead.
type CellValue struct {
	kind CellKind
	num  float64
	text string
}

func EmptyCell() CellValue          { return CellValue{kind: CellEmpty} }
func NumberCell(n float64) CellValue { return CellValue{kind: CellNumber, num: n} }
func TextCell(s string) CellValue    { return CellValue{kind: CellText, text: s} }

// CellOf converts a raw value from the Sheets API (UNFORMATTED_VALUE
// rendering) into a CellValue. Whitespace-only strings count as empty.
func CellOf(v any) CellValue {
	switch t := v.(type) {
	case nil:
		return EmptyCell()
	case float64:
		return NumberCell(t)
	case int:
		return NumberCell(float64(t))
	case int64:
		return NumberCell(float64(t))
	case bool:
		if t {
			return TextCell("TRUE")
		}
		return TextCell("FALSE")
	case string:
		if strings.TrimSpace(t) == "" {
			return EmptyCell()
		}
		return TextCell(t)
	default:
		return EmptyCell()
	}
}

func (c CellValue) Kind() CellKind { return c.kind }
func (c CellValue) IsEmpty() bool  { return c.kind == CellEmpty }

// Number returns the numeric value and whether the cell holds one.
func (c CellValue) Number() (float64, bool) {
	if c.kind != CellNumber {
		return 0, false
	}
	return c.num, true
}

// Text renders the cell as a string. Numbers are formatted with minimal
// precision, empty cells render as "".
func (c CellValue) Text() string {
	switch c.kind {
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case CellText:
		return c.text
	default:
		return ""
	}
}

// Row is one data row of the timesheet, addressed only through a HeaderIndex.
type Row []CellValue

// RowOf converts a raw Sheets API row.
func RowOf(raw []any) Row {
	row := make(Row, len(raw))
	for i, v := range raw {
		row[i] = CellOf(v)
	}
	return row
}

// Cell returns the value at column i. Data rows are often shorter than the
// header row (trailing cells are not sent back), so out-of-range reads yield
// an empty cell rather than an error.
func (r Row) Cell(i int) CellValue {
	if i < 0 || i >= len(r) {
		return EmptyCell()
	}
	return r[i]
}

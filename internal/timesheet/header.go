package timesheet

import "strings"

// Column names the engine depends on. Rows are always addressed by header
// name, never by raw position.
const (
	ColDate      = "Date"
	ColStartTime = "Start time"
	ColProject   = "Project"
	ColActivity  = "Activity"
	ColDetails   = "Details"
	ColSpent     = "Spent"
	ColAction    = "Action"
	ColEventID   = "Event id"
	ColLink      = "Link"
)

// HeaderIndex maps column names to zero-based positions. It is built once per
// sheet from the header row; a column is only reported missing when first
// asked for, so sheets without e.g. a "Link" column still work for read-only
// operations.
type HeaderIndex map[string]int

func NewHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := idx[name]; dup {
			continue
		}
		idx[name] = i
	}
	return idx
}

// Col returns the position of a named column.
func (h HeaderIndex) Col(name string) (int, error) {
	i, ok := h[name]
	if !ok {
		return 0, &MissingColumnError{Name: name}
	}
	return i, nil
}

// Letters returns the A1 column letters for a named column ("A", "B", ...,
// "AA"), used when composing cell ranges for writes.
func (h HeaderIndex) Letters(name string) (string, error) {
	i, err := h.Col(name)
	if err != nil {
		return "", err
	}
	return ColumnLetters(i), nil
}

// ColumnLetters converts a zero-based column index to A1 letters.
func ColumnLetters(i int) string {
	n := i + 1
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

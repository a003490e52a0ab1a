package timesheet

import "strings"

// Action markers as stored in the sheet's Action column. The single-letter
// values match the sheet conventions users already have.
const (
	MarkerIgnore    = "I" // event synced; never create again
	MarkerIgnoreAll = "P" // never touch this row, in any mode
	MarkerDelete    = "D" // delete the linked event on the next sync
)

// ActionKind is the per-row state decoded from the Action cell.
type ActionKind int

const (
	ActionPending ActionKind = iota // empty marker: eligible for create
	ActionCommitted
	ActionSuppressed
	ActionDeleteRequested
	ActionUnknown
)

// Action is the decoded marker. Raw keeps the original cell text so unknown
// markers can be reported verbatim.
type Action struct {
	Kind ActionKind
	Raw  string
}

func ParseAction(cell CellValue) Action {
	raw := strings.TrimSpace(cell.Text())
	switch raw {
	case "":
		return Action{Kind: ActionPending}
	case MarkerIgnore:
		return Action{Kind: ActionCommitted, Raw: raw}
	case MarkerIgnoreAll:
		return Action{Kind: ActionSuppressed, Raw: raw}
	case MarkerDelete:
		return Action{Kind: ActionDeleteRequested, Raw: raw}
	default:
		return Action{Kind: ActionUnknown, Raw: raw}
	}
}

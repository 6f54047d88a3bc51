package status

import "fmt"

type Status int32

const (
	Pending Status = iota
	Running
	Completed
	Failed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// MarshalText renders the status as its name so JSON records stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{Pending, Running, Completed, Failed, Cancelled} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown status %q", text)
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to Status) bool {
	switch from {
	case Pending:
		return to == Running || to == Cancelled
	case Running:
		return to == Completed || to == Failed || to == Cancelled
	default:
		return false
	}
}

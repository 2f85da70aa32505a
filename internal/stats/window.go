package stats

import "fmt"

// Window is one of the fixed periods statistics are tracked over.
type Window int

const (
	Last7 Window = iota
	Last15
	Last30
	Season
)

// Windows lists every window in display order.
var Windows = []Window{Last7, Last15, Last30, Season}

var windowNames = [...]string{
	Last7:  "last_7",
	Last15: "last_15",
	Last30: "last_30",
	Season: "season",
}

func (w Window) Valid() bool {
	return w >= Last7 && w <= Season
}

func (w Window) String() string {
	if !w.Valid() {
		return fmt.Sprintf("window(%d)", int(w))
	}
	return windowNames[w]
}

// Label is the human readable name used by the dashboards.
func (w Window) Label() string {
	switch w {
	case Last7:
		return "Last 7 Days"
	case Last15:
		return "Last 15 Days"
	case Last30:
		return "Last 30 Days"
	case Season:
		return "Season"
	default:
		return w.String()
	}
}

func ParseWindow(s string) (Window, error) {
	for i, name := range windowNames {
		if name == s {
			return Window(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown window %q", ErrInvalidConfig, s)
}

func (w Window) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("marshalling invalid window %d", int(w))
	}
	return []byte(windowNames[w]), nil
}

func (w *Window) UnmarshalText(text []byte) error {
	parsed, err := ParseWindow(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Position sweep over one coordinate and the sinks its records go to
package sweep

import "strings"

// Axis selects which endpoint the sweep moves along X.
type Axis int

const (
	AxisRx Axis = iota
	AxisJam
)

// ParseAxis maps a selector to an Axis. "jam", "jammer" and "j" select the
// jammer in any case; everything else selects the receiver.
func ParseAxis(s string) Axis {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jam", "jammer", "j":
		return AxisJam
	}
	return AxisRx
}

func (a Axis) String() string {
	if a == AxisJam {
		return "jam"
	}
	return "rx"
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(b []byte) error {
	*a = ParseAxis(string(b))
	return nil
}

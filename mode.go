package posture

import (
	"fmt"
	"strings"
)

// Mode selects the rule set used to evaluate a posture
type Mode int

const (
	Standing Mode = iota
	Squat
	PushUp
	Plank
	Lunge
)

// DefaultMode is the mode used when a caller does not supply one
const DefaultMode = Squat

// Modes lists every supported mode
var Modes = []Mode{Standing, Squat, PushUp, Plank, Lunge}

// String returns the display name of the mode
func (m Mode) String() string {
	switch m {
	case Standing:
		return "Standing"
	case Squat:
		return "Squat"
	case PushUp:
		return "Push-Up"
	case Plank:
		return "Plank"
	case Lunge:
		return "Lunge"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the Mode for name.  Matching ignores case, surrounding
// space and the separators '-', '_' and ' ', so "Push-Up", "pushup" and
// "push_up" all select PushUp.  An unrecognized name returns ErrUnknownMode
func ParseMode(name string) (Mode, error) {

	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)

	switch key {
	case "standing", "stand":
		return Standing, nil
	case "squat":
		return Squat, nil
	case "pushup":
		return PushUp, nil
	case "plank":
		return Plank, nil
	case "lunge":
		return Lunge, nil
	}

	return DefaultMode, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

package input

import "math"

// Gesture labels emitted by the recognition service.
const (
	LabelUp          = "UP"
	LabelDown        = "DOWN"
	LabelLeft        = "LEFT"
	LabelRight       = "RIGHT"
	LabelTogglePause = "TOGGLE_PAUSE"
)

// Kind is the modality of a raw input.
type Kind int

const (
	KindKey Kind = iota + 1
	KindSwipe
	KindGesture
	KindVoice
)

// RawInput is an unnormalized input from any modality. Only the fields
// belonging to Kind are meaningful.
type RawInput struct {
	Kind  Kind
	Key   string  // KindKey: DOM key name, e.g. "ArrowUp"
	DX    float64 // KindSwipe: horizontal displacement from touch start
	DY    float64 // KindSwipe: vertical displacement, positive downward
	Label string  // KindGesture: recognizer label
	Text  string  // KindVoice: transcribed speech
}

// Source returns the event source matching the raw input's modality.
func (r RawInput) Source() Source {
	switch r.Kind {
	case KindKey:
		return SourceKeyboard
	case KindSwipe:
		return SourceTouch
	case KindVoice:
		return SourceVoice
	default:
		return SourceGesture
	}
}

// Normalize converts a raw input into a command. The second return value is
// false when the input does not correspond to any command.
func Normalize(r RawInput) (Command, bool) {
	switch r.Kind {
	case KindKey:
		return FromKey(r.Key)
	case KindSwipe:
		return FromSwipe(r.DX, r.DY)
	case KindGesture:
		return FromLabel(r.Label)
	case KindVoice:
		return FromPhrase(r.Text)
	}
	return 0, false
}

var keyTable = map[string]Command{
	"ArrowUp":    TurnUp,
	"ArrowDown":  TurnDown,
	"ArrowLeft":  TurnLeft,
	"ArrowRight": TurnRight,
}

// FromKey maps the four arrow keys to directional commands.
func FromKey(key string) (Command, bool) {
	c, ok := keyTable[key]
	return c, ok
}

// FromSwipe maps a touch displacement to a directional command. The axis with
// the larger absolute displacement wins; ties go to the vertical axis.
func FromSwipe(dx, dy float64) (Command, bool) {
	if dx == 0 && dy == 0 {
		return 0, false
	}
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return TurnRight, true
		}
		return TurnLeft, true
	}
	if dy > 0 {
		return TurnDown, true
	}
	return TurnUp, true
}

var labelTable = map[string]Command{
	LabelUp:          TurnUp,
	LabelDown:        TurnDown,
	LabelLeft:        TurnLeft,
	LabelRight:       TurnRight,
	LabelTogglePause: TogglePause,
}

// FromLabel maps a recognizer gesture label to its command.
func FromLabel(label string) (Command, bool) {
	c, ok := labelTable[label]
	return c, ok
}

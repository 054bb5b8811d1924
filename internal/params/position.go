package params

import "fmt"

// Position is where the Pollfish indicator is placed on screen. Values match
// the integers the native SDKs expect.
type Position int

const (
	PositionTopLeft Position = iota
	PositionTopRight
	PositionMiddleLeft
	PositionMiddleRight
	PositionBottomLeft
	PositionBottomRight
)

var positionNames = [...]string{
	PositionTopLeft:     "top-left",
	PositionTopRight:    "top-right",
	PositionMiddleLeft:  "middle-left",
	PositionMiddleRight: "middle-right",
	PositionBottomLeft:  "bottom-left",
	PositionBottomRight: "bottom-right",
}

func (p Position) Valid() bool {
	return p >= PositionTopLeft && p <= PositionBottomRight
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// ParsePosition accepts the names returned by Position.String.
func ParsePosition(s string) (Position, error) {
	for i, name := range positionNames {
		if name == s {
			return Position(i), nil
		}
	}
	return 0, fmt.Errorf("unknown indicator position %q", s)
}

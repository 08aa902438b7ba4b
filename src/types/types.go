package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFloor = errors.New("invalid floor number")
	ErrInvalidCarID = errors.New("invalid elevator ID")
)

// Direction of a hall call.
type Direction int

const (
	Up Direction = iota
	Down
)

// Directions lists both hall call directions in table order.
var Directions = [2]Direction{Up, Down}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Opposite returns the other hall call direction.
func (d Direction) Opposite() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// ParseDirection accepts "up" and "down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if d != Up && d != Down {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MotionState of a car.
type MotionState int

const (
	Idle MotionState = iota
	MovingUp
	MovingDown
)

func (s MotionState) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case MovingUp:
		return "MOVING_UP"
	case MovingDown:
		return "MOVING_DOWN"
	}
	return fmt.Sprintf("MotionState(%d)", int(s))
}

func (s MotionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Travel returns the hall call direction matching the motion, ok is false when idle.
func (s MotionState) Travel() (dir Direction, ok bool) {
	switch s {
	case MovingUp:
		return Up, true
	case MovingDown:
		return Down, true
	}
	return 0, false
}

// Target is a floor a car has committed to visit. Dir is nil for a selection made
// inside the car, otherwise it is the hall call direction the car will serve there.
type Target struct {
	Floor int
	Dir   *Direction
}

// Internal returns an in-car target.
func Internal(floor int) Target {
	return Target{Floor: floor}
}

// External returns a hall call target.
func External(floor int, dir Direction) Target {
	return Target{Floor: floor, Dir: &dir}
}

func (t Target) IsInternal() bool {
	return t.Dir == nil
}

// Is reports whether t is the hall call (floor, dir).
func (t Target) Is(floor int, dir Direction) bool {
	return t.Dir != nil && t.Floor == floor && *t.Dir == dir
}

// Same compares floor and direction tag.
func (t Target) Same(other Target) bool {
	if t.Floor != other.Floor {
		return false
	}
	if t.Dir == nil || other.Dir == nil {
		return t.Dir == nil && other.Dir == nil
	}
	return *t.Dir == *other.Dir
}

func (t Target) String() string {
	if t.Dir == nil {
		return fmt.Sprintf("Cab(%d)", t.Floor)
	}
	if *t.Dir == Up {
		return fmt.Sprintf("HallUp(%d)", t.Floor)
	}
	return fmt.Sprintf("HallDown(%d)", t.Floor)
}

// CheckFloor wraps ErrInvalidFloor when floor is outside [0, maxFloor].
func CheckFloor(floor, maxFloor int) error {
	if floor < 0 || floor > maxFloor {
		return fmt.Errorf("%w: %d", ErrInvalidFloor, floor)
	}
	return nil
}

package elev

import (
	"elevbank/src/types"
	"elevbank/src/utils"
)

// Distance is the number of floors the car travels before it can reach floor.
// A car moving away from floor first sweeps to its farthest target, then comes back.
func (s CarState) Distance(floor int) int {
	switch s.State {
	case types.MovingUp:
		if floor >= s.Floor {
			return floor - s.Floor
		}
		top := s.Floor
		for _, t := range s.Targets {
			top = max(top, t.Floor)
		}
		return (top - s.Floor) + (top - floor)
	case types.MovingDown:
		if floor <= s.Floor {
			return s.Floor - floor
		}
		bottom := s.Floor
		for _, t := range s.Targets {
			bottom = min(bottom, t.Floor)
		}
		return (s.Floor - bottom) + (floor - bottom)
	}
	return utils.Abs(s.Floor - floor)
}

// HasExternalAt reports whether the car already serves a hall call at floor.
func (s CarState) HasExternalAt(floor int) bool {
	return len(externalAt(s.Targets, floor)) > 0
}

// InternalFloors lists the floors selected inside the car, in selection order.
func (s CarState) InternalFloors() []int {
	floors := []int{}
	for _, t := range s.Targets {
		if t.IsInternal() {
			floors = append(floors, t.Floor)
		}
	}
	return floors
}

package elev

import "elevbank/src/types"

// nextTarget picks the target the car heads for, following the SCAN discipline:
//   - moving up, the lowest internal or up-call target at or above floor
//   - moving down, the highest internal or down-call target at or below floor
//   - otherwise the oldest target, which is the reverse case when moving
func nextTarget(state types.MotionState, floor int, targets []types.Target) (types.Target, bool) {
	if len(targets) == 0 {
		return types.Target{}, false
	}
	var best types.Target
	found := false
	switch state {
	case types.MovingUp:
		for _, t := range targets {
			if t.Floor >= floor && (t.IsInternal() || *t.Dir == types.Up) && (!found || t.Floor < best.Floor) {
				best, found = t, true
			}
		}
	case types.MovingDown:
		for _, t := range targets {
			if t.Floor <= floor && (t.IsInternal() || *t.Dir == types.Down) && (!found || t.Floor > best.Floor) {
				best, found = t, true
			}
		}
	}
	if found {
		return best, true
	}
	return targets[0], true
}

// deriveState is the transition rule evaluated at the start of every cycle.
func deriveState(state types.MotionState, floor int, targets []types.Target) types.MotionState {
	next, ok := nextTarget(state, floor, targets)
	switch {
	case !ok || next.Floor == floor:
		return types.Idle
	case next.Floor > floor:
		return types.MovingUp
	default:
		return types.MovingDown
	}
}

// aheadOf reports whether floor lies strictly in direction dir from from.
func aheadOf(floor, from int, dir types.Direction) bool {
	if dir == types.Up {
		return floor > from
	}
	return floor < from
}

func containsTarget(targets []types.Target, target types.Target) bool {
	for _, t := range targets {
		if t.Same(target) {
			return true
		}
	}
	return false
}

// withoutTarget returns a new slice without any target equal to target.
func withoutTarget(targets []types.Target, target types.Target) []types.Target {
	result := make([]types.Target, 0, len(targets))
	for _, t := range targets {
		if !t.Same(target) {
			result = append(result, t)
		}
	}
	return result
}

// withoutInternalAt drops the in-car selections at floor, which are served on arrival.
func withoutInternalAt(targets []types.Target, floor int) []types.Target {
	result := make([]types.Target, 0, len(targets))
	for _, t := range targets {
		if !(t.IsInternal() && t.Floor == floor) {
			result = append(result, t)
		}
	}
	return result
}

// externalAt returns the hall call targets at floor in list order.
func externalAt(targets []types.Target, floor int) []types.Target {
	var result []types.Target
	for _, t := range targets {
		if !t.IsInternal() && t.Floor == floor {
			result = append(result, t)
		}
	}
	return result
}

package dispatcher

import (
	"elevbank/src/elev"
	"elevbank/src/types"
)

// eligible reports whether car may take the hall call (floor, dir) without breaking its
// direction of travel:
//   - it does not serve a hall call at that floor already
//   - it is not stopped at that floor right now
//   - it is idle, or the call lies ahead in its direction of travel, or it is the
//     end floor call a sweep always reaches
func eligible(car elev.CarState, floor int, dir types.Direction, maxFloor int) bool {
	if car.HasExternalAt(floor) {
		return false
	}
	if car.Floor == floor && car.WillStop {
		return false
	}
	switch car.State {
	case types.Idle:
		return true
	case types.MovingUp:
		return (dir == types.Up && car.Floor < floor) || (dir == types.Down && floor == maxFloor)
	case types.MovingDown:
		return (dir == types.Down && car.Floor > floor) || (dir == types.Up && floor == 0)
	}
	return false
}

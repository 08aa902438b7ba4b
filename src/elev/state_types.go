// State types are defined in elev package to make method receivers possible in elev_state.go.
package elev

import (
	"log/slog"
	"sync"

	"elevbank/src/config"
	"elevbank/src/directory"
	"elevbank/src/types"
)

// Car is one elevator. Its fields are only written by its own Run loop, except for targets
// appended by the dispatcher and Reset.
type Car struct {
	id        int
	maxFloor  int
	timing    config.Timing
	directory *directory.Directory
	logger    *slog.Logger

	mu       sync.RWMutex
	floor    int
	state    types.MotionState
	targets  []types.Target
	willStop bool
	doorOpen bool
	// epoch is bumped by Reset so a cycle sleeping across a reset drops its move.
	epoch uint64
}

// CarState is a copy of a car's observable state.
type CarState struct {
	ID       int
	Floor    int
	State    types.MotionState
	Targets  []types.Target
	WillStop bool
	DoorOpen bool
}

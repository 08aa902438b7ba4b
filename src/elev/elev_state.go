package elev

import (
	"log/slog"

	"github.com/tiendc/go-deepcopy"

	"elevbank/src/config"
	"elevbank/src/directory"
	"elevbank/src/types"
)

func NewCar(id, maxFloor int, timing config.Timing, dir *directory.Directory) *Car {
	c := &Car{
		id:        id,
		maxFloor:  maxFloor,
		timing:    timing,
		directory: dir,
		logger:    slog.Default().With("car", id),
		state:     types.Idle,
	}
	c.logger.Debug("Car initialized", "maxFloor", maxFloor)
	return c
}

func (c *Car) ID() int {
	return c.id
}

// State returns a deep copy of the car state.
func (c *Car) State() CarState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var snapshot CarState
	if err := deepcopy.Copy(&snapshot, CarState{
		ID:       c.id,
		Floor:    c.floor,
		State:    c.state,
		Targets:  c.targets,
		WillStop: c.willStop,
		DoorOpen: c.doorOpen,
	}); err != nil {
		panic(err)
	}
	return snapshot
}

// AddTarget appends a target unless an identical one is already held.
// dir nil selects the floor from inside the car.
func (c *Car) AddTarget(floor int, dir *types.Direction) error {
	if err := types.CheckFloor(floor, c.maxFloor); err != nil {
		return err
	}
	target := types.Target{Floor: floor, Dir: dir}
	c.mu.Lock()
	defer c.mu.Unlock()
	if containsTarget(c.targets, target) {
		return nil
	}
	c.targets = append(c.targets, target)
	c.logger.Info("Target added", "target", target)
	return nil
}

// Reset puts the car back on floor 0, idle, with no targets and the door closed.
func (c *Car) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floor = 0
	c.state = types.Idle
	c.targets = nil
	c.willStop = false
	c.doorOpen = false
	c.epoch++
	c.logger.Info("Car reset")
}

// Contains the move/settle cycle of a single car and the hall call reconciliation it runs on arrival.
package elev

import (
	"context"

	"elevbank/src/directory"
	"elevbank/src/timer"
	"elevbank/src/types"
)

// Run executes cycles until ctx is done.
func (c *Car) Run(ctx context.Context) error {
	c.logger.Info("Car started", "floor", c.State().Floor)
	for {
		if err := c.Step(ctx); err != nil {
			c.logger.Info("Car stopped", "reason", err)
			return err
		}
	}
}

// Step runs one cycle: pick a state, move one floor if moving, reconcile hall calls at the
// floor reached, and hold the door open if the car has to stop there.
// It only returns an error when ctx is done.
func (c *Car) Step(ctx context.Context) error {
	c.mu.Lock()
	epoch := c.epoch
	from := c.floor
	state := c.updateState()
	idle := state == types.Idle && len(c.targets) == 0
	c.mu.Unlock()

	if idle {
		return timer.Sleep(ctx, c.timing.IdlePoll)
	}

	if dir, moving := state.Travel(); moving {
		c.logger.Debug("Departing", "floor", from, "direction", dir)
		if err := timer.Sleep(ctx, c.timing.Travel); err != nil {
			return err
		}
		if !c.advance(epoch, dir) {
			return nil
		}
		if err := timer.Sleep(ctx, c.timing.Settle); err != nil {
			return err
		}
	}

	stop, current := false, true
	_ = c.directory.WithExclusion(func(t *directory.Table) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			current = false
			return nil
		}
		c.serveFloor(t)
		stop = c.willStop
		return nil
	})
	if !current {
		return nil
	}
	if stop {
		return c.holdDoor(ctx, epoch)
	}
	if state == types.Idle {
		return timer.Sleep(ctx, c.timing.IdlePoll)
	}
	return nil
}

// updateState applies the transition rule. Must be called with c.mu held.
func (c *Car) updateState() types.MotionState {
	state := deriveState(c.state, c.floor, c.targets)
	if state != c.state {
		c.logger.Debug("State changed", "from", c.state, "to", state, "floor", c.floor, "targets", FormatTargets(c.targets))
		c.state = state
	}
	return state
}

// advance moves the car one floor in dir. It reports false if the car was reset meanwhile.
func (c *Car) advance(epoch uint64, dir types.Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Debug("Move abandoned after reset")
		return false
	}
	if dir == types.Up && c.floor < c.maxFloor {
		c.floor++
	} else if dir == types.Down && c.floor > 0 {
		c.floor--
	}
	c.logger.Debug("Arrived at floor", "floor", c.floor, "direction", dir)
	return true
}

func (c *Car) holdDoor(ctx context.Context, epoch uint64) error {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil
	}
	c.doorOpen = true
	floor := c.floor
	c.mu.Unlock()
	c.logger.Info("Door opening", "floor", floor)

	err := timer.Sleep(ctx, c.timing.DoorOpen)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.doorOpen = false
		c.willStop = false
		c.logger.Info("Door closed", "floor", floor)
	}
	return err
}

// serveFloor reconciles the hall calls at the current floor with the car's targets.
// At most one hall call is cleared per cycle. Must be called with the directory
// exclusion and c.mu held.
func (c *Car) serveFloor(t *directory.Table) {
	c.dropStaleCalls(t)

	_ = c.passingBy(t) ||
		c.reverseHere(t) ||
		c.lastTarget(t) ||
		c.boundaryCall(t)

	c.arriveInternal()
}

// dropStaleCalls forgets hall call targets that are no longer assigned to this car,
// typically because another car served them on its way past.
func (c *Car) dropStaleCalls(t *directory.Table) {
	kept := c.targets[:0]
	for _, target := range c.targets {
		if !target.IsInternal() {
			if car, ok := t.AssignedTo(target.Floor, *target.Dir); !ok || car != c.id {
				c.logger.Debug("Dropping stale hall call", "target", target)
				continue
			}
		}
		kept = append(kept, target)
	}
	c.targets = kept
}

// passingBy stops for a pending call in the direction of travel, as long as the car keeps
// going that way afterwards.
func (c *Car) passingBy(t *directory.Table) bool {
	travel, moving := c.state.Travel()
	if !moving || !t.Pending(c.floor, travel) {
		return false
	}
	remaining := withoutInternalAt(withoutTarget(c.targets, types.External(c.floor, travel)), c.floor)
	next, ok := nextTarget(c.state, c.floor, remaining)
	if ok && !aheadOf(next.Floor, c.floor, travel) {
		return false
	}
	c.logger.Info("Stopping for passing call", "floor", c.floor, "direction", travel)
	c.clearCall(t, c.floor, travel)
	return true
}

// reverseHere serves a hall call target at this floor when the car turns around here.
// An idle car is parked on the floor and serves it straight away.
func (c *Car) reverseHere(t *directory.Table) bool {
	travel, moving := c.state.Travel()
	for _, target := range externalAt(c.targets, c.floor) {
		if moving {
			remaining := withoutInternalAt(withoutTarget(c.targets, target), c.floor)
			next, ok := nextTarget(c.state, c.floor, remaining)
			if !ok || !aheadOf(next.Floor, c.floor, travel.Opposite()) {
				continue
			}
		}
		c.logger.Info("Serving call before reversing", "floor", c.floor, "direction", *target.Dir)
		c.clearCall(t, c.floor, *target.Dir)
		return true
	}
	return false
}

// lastTarget serves the only remaining target when it is a hall call at this floor.
func (c *Car) lastTarget(t *directory.Table) bool {
	if len(c.targets) != 1 {
		return false
	}
	target := c.targets[0]
	if target.IsInternal() || target.Floor != c.floor {
		return false
	}
	c.logger.Info("Serving last call", "floor", c.floor, "direction", *target.Dir)
	c.clearCall(t, c.floor, *target.Dir)
	return true
}

// boundaryCall serves a down call at the top floor or an up call at the bottom floor.
func (c *Car) boundaryCall(t *directory.Table) bool {
	switch {
	case c.floor == c.maxFloor && t.Pending(c.floor, types.Down):
		c.clearCall(t, c.floor, types.Down)
	case c.floor == 0 && t.Pending(c.floor, types.Up):
		c.clearCall(t, c.floor, types.Up)
	default:
		return false
	}
	c.logger.Info("Serving call at end floor", "floor", c.floor)
	return true
}

// arriveInternal serves every in-car selection of the current floor.
func (c *Car) arriveInternal() {
	remaining := withoutInternalAt(c.targets, c.floor)
	if len(remaining) == len(c.targets) {
		return
	}
	c.targets = remaining
	c.willStop = true
	c.logger.Info("Reached selected floor", "floor", c.floor)
}

// clearCall frees the hall call and removes it from the car's targets.
func (c *Car) clearCall(t *directory.Table, floor int, dir types.Direction) {
	t.Clear(floor, dir)
	c.targets = withoutTarget(c.targets, types.External(floor, dir))
	c.willStop = true
}

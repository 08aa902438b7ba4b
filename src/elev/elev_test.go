package elev

import (
	"context"
	"errors"
	"testing"
	"time"

	"elevbank/src/config"
	"elevbank/src/directory"
	"elevbank/src/types"
)

const testMaxFloor = 5

var fastTiming = config.Timing{
	Travel:   time.Millisecond,
	Settle:   0,
	DoorOpen: time.Millisecond,
	IdlePoll: time.Millisecond,
}

func dirPtr(d types.Direction) *types.Direction {
	return &d
}

func newTestCar(t *testing.T, timing config.Timing) (*Car, *directory.Directory) {
	t.Helper()
	dir := directory.New(testMaxFloor)
	return NewCar(0, testMaxFloor, timing, dir), dir
}

// assignCall records a hall call for car and gives the car the matching target,
// the way the dispatcher does.
func assignCall(t *testing.T, c *Car, dir *directory.Directory, floor int, d types.Direction) {
	t.Helper()
	err := dir.WithExclusion(func(tb *directory.Table) error {
		tb.Request(floor, d)
		tb.Assign(floor, d, c.ID())
		return c.AddTarget(floor, dirPtr(d))
	})
	if err != nil {
		t.Fatal(err)
	}
}

func place(c *Car, floor int, state types.MotionState) {
	c.mu.Lock()
	c.floor = floor
	c.state = state
	c.mu.Unlock()
}

func step(t *testing.T, c *Car) {
	t.Helper()
	if err := c.Step(context.Background()); err != nil {
		t.Fatalf("Step returned %v", err)
	}
}

func pendingCount(dir *directory.Directory) int {
	n := 0
	for _, cells := range dir.Snapshot() {
		for _, cell := range cells {
			if cell.IsPending() {
				n++
			}
		}
	}
	return n
}

func TestNextTarget(t *testing.T) {
	tests := []struct {
		name     string
		state    types.MotionState
		floor    int
		targets  []types.Target
		expected types.Target
		ok       bool
	}{
		{"empty", types.MovingUp, 2, nil, types.Target{}, false},
		{"idle takes oldest", types.Idle, 2, []types.Target{types.Internal(4), types.Internal(1)}, types.Internal(4), true},
		{"up takes nearest above", types.MovingUp, 2, []types.Target{types.Internal(5), types.Internal(3), types.Internal(1)}, types.Internal(3), true},
		{"up includes current floor", types.MovingUp, 2, []types.Target{types.Internal(4), types.Internal(2)}, types.Internal(2), true},
		{"up skips down calls", types.MovingUp, 1, []types.Target{types.External(2, types.Down), types.External(4, types.Up)}, types.External(4, types.Up), true},
		{"up reverses to oldest", types.MovingUp, 3, []types.Target{types.Internal(1), types.External(4, types.Down)}, types.Internal(1), true},
		{"down takes nearest below", types.MovingDown, 4, []types.Target{types.Internal(0), types.External(2, types.Down), types.Internal(5)}, types.External(2, types.Down), true},
		{"down skips up calls", types.MovingDown, 4, []types.Target{types.External(3, types.Up), types.Internal(1)}, types.Internal(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := nextTarget(tt.state, tt.floor, tt.targets)
			if ok != tt.ok || (ok && !next.Same(tt.expected)) {
				t.Errorf("nextTarget = %v, %v; expected %v, %v", next, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name     string
		state    types.MotionState
		floor    int
		targets  []types.Target
		expected types.MotionState
	}{
		{"no targets", types.MovingUp, 3, nil, types.Idle},
		{"single target here", types.Idle, 3, []types.Target{types.External(3, types.Up)}, types.Idle},
		{"target above", types.Idle, 0, []types.Target{types.External(3, types.Up)}, types.MovingUp},
		{"target below", types.Idle, 4, []types.Target{types.Internal(1)}, types.MovingDown},
		{"keeps sweeping up", types.MovingUp, 2, []types.Target{types.Internal(0), types.Internal(4)}, types.MovingUp},
		{"reverses when nothing ahead", types.MovingUp, 4, []types.Target{types.Internal(0)}, types.MovingDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveState(tt.state, tt.floor, tt.targets); got != tt.expected {
				t.Errorf("deriveState = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		state    CarState
		floor    int
		expected int
	}{
		{"idle above", CarState{Floor: 0, State: types.Idle}, 5, 5},
		{"idle below", CarState{Floor: 4, State: types.Idle}, 1, 3},
		{"up ahead", CarState{Floor: 1, State: types.MovingUp, Targets: []types.Target{types.Internal(5)}}, 3, 2},
		{"up behind", CarState{Floor: 2, State: types.MovingUp, Targets: []types.Target{types.Internal(4)}}, 1, 5},
		{"down ahead", CarState{Floor: 4, State: types.MovingDown, Targets: []types.Target{types.Internal(0)}}, 2, 2},
		{"down behind", CarState{Floor: 3, State: types.MovingDown, Targets: []types.Target{types.Internal(1)}}, 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Distance(tt.floor); got != tt.expected {
				t.Errorf("Distance(%d) = %d, expected %d", tt.floor, got, tt.expected)
			}
		})
	}
}

func TestAddTarget(t *testing.T) {
	c, _ := newTestCar(t, fastTiming)
	for _, floor := range []int{-1, testMaxFloor + 1} {
		if err := c.AddTarget(floor, nil); !errors.Is(err, types.ErrInvalidFloor) {
			t.Errorf("AddTarget(%d) = %v, expected ErrInvalidFloor", floor, err)
		}
	}
	if len(c.State().Targets) != 0 {
		t.Fatal("rejected targets must not be recorded")
	}

	_ = c.AddTarget(3, nil)
	_ = c.AddTarget(3, nil)
	_ = c.AddTarget(3, dirPtr(types.Up))
	_ = c.AddTarget(3, dirPtr(types.Up))
	_ = c.AddTarget(3, dirPtr(types.Down))

	targets := c.State().Targets
	if len(targets) != 3 {
		t.Fatalf("expected 3 distinct targets, got %s", FormatTargets(targets))
	}
	for i := range targets {
		for j := i + 1; j < len(targets); j++ {
			if targets[i].Same(targets[j]) {
				t.Errorf("duplicate target %v", targets[i])
			}
		}
	}
}

func TestStateIsACopy(t *testing.T) {
	c, _ := newTestCar(t, fastTiming)
	_ = c.AddTarget(2, dirPtr(types.Up))
	s := c.State()
	*s.Targets[0].Dir = types.Down
	s.Targets[0].Floor = 4
	if got := c.State().Targets[0]; !got.Same(types.External(2, types.Up)) {
		t.Errorf("mutating a snapshot changed the car: %v", got)
	}
}

// A car idle at floor 0 with a call at floor 3 going up moves there, clears the call,
// opens and closes its door and becomes idle again.
func TestServeHallCall(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	assignCall(t, c, dir, 3, types.Up)

	step(t, c)
	if s := c.State(); s.State != types.MovingUp || s.Floor != 1 {
		t.Fatalf("expected MOVING_UP at floor 1, got %v at %d", s.State, s.Floor)
	}
	step(t, c)
	step(t, c)

	s := c.State()
	if s.Floor != 3 {
		t.Fatalf("expected floor 3, got %d", s.Floor)
	}
	if len(s.Targets) != 0 || s.DoorOpen || s.WillStop {
		t.Errorf("unexpected state after serving the call: %+v", s)
	}
	if pendingCount(dir) != 0 {
		t.Error("the hall call should be cleared")
	}

	step(t, c)
	if s := c.State(); s.State != types.Idle || s.Floor != 3 {
		t.Errorf("expected IDLE at floor 3, got %v at %d", s.State, s.Floor)
	}
}

func TestDoorOpensOnArrival(t *testing.T) {
	timing := fastTiming
	timing.DoorOpen = 200 * time.Millisecond
	c, _ := newTestCar(t, timing)
	_ = c.AddTarget(1, nil)

	done := make(chan error, 1)
	go func() { done <- c.Step(context.Background()) }()

	deadline := time.After(150 * time.Millisecond)
	for !c.State().DoorOpen {
		select {
		case <-deadline:
			t.Fatal("door never opened")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if s := c.State(); s.DoorOpen || s.WillStop || s.Floor != 1 {
		t.Errorf("expected closed door at floor 1, got %+v", s)
	}
}

func TestInternalTargetsCollapse(t *testing.T) {
	c, _ := newTestCar(t, fastTiming)
	_ = c.AddTarget(1, nil)
	_ = c.AddTarget(2, nil)
	step(t, c)
	s := c.State()
	if s.Floor != 1 {
		t.Fatalf("expected floor 1, got %d", s.Floor)
	}
	if floors := s.InternalFloors(); len(floors) != 1 || floors[0] != 2 {
		t.Errorf("expected only floor 2 left, got %v", floors)
	}
}

func TestPassingByServesCallAhead(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	_ = c.AddTarget(4, nil)
	_ = dir.WithExclusion(func(tb *directory.Table) error {
		tb.Request(1, types.Up)
		tb.Assign(1, types.Up, 7)
		return nil
	})

	step(t, c)
	if pendingCount(dir) != 0 {
		t.Error("a car going up through floor 1 should serve the up call there")
	}
	if floors := c.State().InternalFloors(); len(floors) != 1 || floors[0] != 4 {
		t.Errorf("the car should still head for floor 4, got %v", floors)
	}
}

func TestPassingByIgnoresOppositeCall(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	_ = c.AddTarget(4, nil)
	_ = dir.WithExclusion(func(tb *directory.Table) error {
		tb.Request(1, types.Down)
		return nil
	})
	step(t, c)
	if pendingCount(dir) != 1 {
		t.Error("a car going up must not serve a down call on the way")
	}
	if c.State().WillStop {
		t.Error("the car should not stop")
	}
}

func TestReversesAtCall(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	place(c, 2, types.MovingUp)
	assignCall(t, c, dir, 3, types.Down)
	_ = c.AddTarget(0, nil)

	step(t, c)
	s := c.State()
	if s.Floor != 3 {
		t.Fatalf("expected floor 3, got %d", s.Floor)
	}
	if pendingCount(dir) != 0 {
		t.Error("the down call at the turning floor should be served")
	}
	if floors := s.InternalFloors(); len(floors) != 1 || floors[0] != 0 {
		t.Errorf("expected floor 0 left, got %v", floors)
	}
}

func TestBoundaryCall(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	place(c, testMaxFloor-1, types.MovingUp)
	_ = c.AddTarget(testMaxFloor, nil)
	_ = dir.WithExclusion(func(tb *directory.Table) error {
		tb.Request(testMaxFloor, types.Down)
		return nil
	})
	step(t, c)
	if pendingCount(dir) != 0 {
		t.Error("a car reaching the top floor should serve the down call there")
	}
}

func TestAtMostOneCallClearedPerCycle(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	place(c, 2, types.MovingUp)
	assignCall(t, c, dir, 3, types.Up)
	assignCall(t, c, dir, 3, types.Down)

	before := pendingCount(dir)
	for i := 0; i < 10 && before > 0; i++ {
		step(t, c)
		after := pendingCount(dir)
		if before-after > 1 {
			t.Fatalf("cycle %d cleared %d calls at once", i, before-after)
		}
		if c.State().Floor != 3 {
			t.Fatalf("car left floor 3 with calls pending")
		}
		before = after
	}
	if before != 0 {
		t.Errorf("expected both calls served, %d still pending", before)
	}
}

func TestLastTargetWithOtherCallPending(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	place(c, 2, types.MovingUp)
	assignCall(t, c, dir, 3, types.Down)
	_ = dir.WithExclusion(func(tb *directory.Table) error {
		tb.Request(3, types.Up)
		return nil
	})

	step(t, c)
	snap := dir.Snapshot()
	if snap[3][types.Down].IsPending() {
		t.Error("the car's own down call should be served")
	}
	if !snap[3][types.Up].IsPending() {
		t.Error("only one call may be cleared per cycle, the up call should still be pending")
	}
}

func TestDropsStaleCalls(t *testing.T) {
	c, dir := newTestCar(t, fastTiming)
	_ = c.AddTarget(4, dirPtr(types.Up))
	_ = c.AddTarget(2, nil)

	step(t, c)
	s := c.State()
	for _, target := range s.Targets {
		if !target.IsInternal() {
			t.Errorf("unassigned hall call target %v should have been dropped", target)
		}
	}
	if pendingCount(dir) != 0 {
		t.Error("directory should be untouched")
	}
}

func TestResetDuringTravel(t *testing.T) {
	timing := fastTiming
	timing.Travel = 100 * time.Millisecond
	c, _ := newTestCar(t, timing)
	_ = c.AddTarget(5, nil)

	done := make(chan error, 1)
	go func() { done <- c.Step(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	c.Reset()
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	s := c.State()
	if s.Floor != 0 || s.State != types.Idle || len(s.Targets) != 0 || s.DoorOpen || s.WillStop {
		t.Errorf("expected a reset car, got %+v", s)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	c, _ := newTestCar(t, fastTiming)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

package dispatcher

import (
	"log/slog"

	"elevbank/src/directory"
	"elevbank/src/elev"
	"elevbank/src/types"
)

// assign picks a car for a pending, unassigned hall call. Only reachable through a table,
// so always under the directory exclusion. It reports whether a car took the call.
//   - only eligible cars are considered
//   - the shortest distance wins
//   - on a tie an idle car beats a moving one, otherwise the lowest car id wins
func (d *Dispatcher) assign(t *directory.Table, floor int, dir types.Direction) bool {
	if _, ok := t.AssignedTo(floor, dir); ok {
		return false
	}

	var best *elev.CarState
	bestCost := 0
	for _, car := range d.cars {
		s := car.State()
		if !eligible(s, floor, dir, d.cfg.MaxFloor) {
			continue
		}
		cost := s.Distance(floor)
		if best == nil || cost < bestCost ||
			(cost == bestCost && s.State == types.Idle && best.State != types.Idle) {
			best, bestCost = &s, cost
		}
	}
	if best == nil {
		slog.Debug("No eligible car, call stays pending", "floor", floor, "direction", dir)
		return false
	}

	if err := d.cars[best.ID].AddTarget(floor, &dir); err != nil {
		slog.Error("Could not hand call to car", "car", best.ID, "floor", floor, "err", err)
		return false
	}
	t.Assign(floor, dir, best.ID)
	slog.Info("Hall call assigned", "floor", floor, "direction", dir, "car", best.ID, "cost", bestCost, "carState", best.State)
	return true
}

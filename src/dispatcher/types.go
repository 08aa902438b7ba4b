package dispatcher

import (
	"elevbank/src/directory"
	"elevbank/src/elev"
)

// Status is a snapshot of the whole bank taken under one exclusion.
type Status struct {
	Cars  []elev.CarState
	Calls [][2]directory.Cell
}

func (d *Dispatcher) Status() Status {
	var status Status
	_ = d.directory.WithExclusion(func(t *directory.Table) error {
		status.Cars = make([]elev.CarState, len(d.cars))
		for i, car := range d.cars {
			status.Cars[i] = car.State()
		}
		status.Calls = t.Cells()
		return nil
	})
	return status
}

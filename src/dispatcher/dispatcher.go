package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"elevbank/src/config"
	"elevbank/src/directory"
	"elevbank/src/elev"
	"elevbank/src/timer"
	"elevbank/src/types"
	"elevbank/src/utils"
)

// Dispatcher owns the cars of the bank and the directory they share.
type Dispatcher struct {
	cfg       config.Config
	directory *directory.Directory
	cars      []*elev.Car
}

func New(cfg config.Config) *Dispatcher {
	dir := directory.New(cfg.MaxFloor)
	cars := make([]*elev.Car, cfg.NumCars)
	for id := range cars {
		cars[id] = elev.NewCar(id, cfg.MaxFloor, cfg.Timing, dir)
	}
	slog.Info("Dispatcher initialized", "cars", cfg.NumCars, "maxFloor", cfg.MaxFloor)
	return &Dispatcher{cfg: cfg, directory: dir, cars: cars}
}

// Run starts one goroutine per car and the reconciliation tick, and blocks until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, car := range d.cars {
		g.Go(func() error { return car.Run(ctx) })
	}
	g.Go(func() error { return timer.Every(ctx, d.cfg.TickInterval, d.Tick) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// RequestElevator registers a hall call and tries to assign it straight away.
func (d *Dispatcher) RequestElevator(floor int, dir types.Direction) error {
	if err := types.CheckFloor(floor, d.cfg.MaxFloor); err != nil {
		slog.Warn("Hall call rejected", "floor", floor, "direction", dir)
		return err
	}
	return d.directory.WithExclusion(func(t *directory.Table) error {
		if !t.Request(floor, dir) {
			slog.Debug("Hall call already pending", "floor", floor, "direction", dir)
			return nil
		}
		slog.Info("Hall call registered", "floor", floor, "direction", dir)
		d.assign(t, floor, dir)
		return nil
	})
}

// SelectFloor adds a selection made inside car carID.
func (d *Dispatcher) SelectFloor(carID, floor int) error {
	if carID < 0 || carID >= len(d.cars) {
		slog.Warn("Floor selection rejected", "car", carID, "floor", floor)
		return fmt.Errorf("%w: %d", types.ErrInvalidCarID, carID)
	}
	return d.cars[carID].AddTarget(floor, nil)
}

// Tick retries every pending call that no car has taken yet.
func (d *Dispatcher) Tick() {
	_ = d.directory.WithExclusion(func(t *directory.Table) error {
		utils.ForEachCall(t.MaxFloor(), func(floor int, dir types.Direction) {
			if t.Cell(floor, dir).State == directory.Pending {
				d.assign(t, floor, dir)
			}
		})
		return nil
	})
}

// Reset returns every car and the directory to their initial state.
func (d *Dispatcher) Reset() {
	_ = d.directory.WithExclusion(func(t *directory.Table) error {
		for _, car := range d.cars {
			car.Reset()
		}
		t.Reset()
		return nil
	})
	slog.Info("System reset")
}

func (d *Dispatcher) Config() config.Config {
	return d.cfg
}

func (d *Dispatcher) Cars() []*elev.Car {
	return d.cars
}

func (d *Dispatcher) Directory() *directory.Directory {
	return d.directory
}

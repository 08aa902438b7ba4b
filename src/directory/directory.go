// Package directory holds the hall calls shared by every car in the bank and the
// exclusion that guards them.
package directory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"elevbank/src/types"
)

// CellState is the lifecycle of one hall call slot.
type CellState int

const (
	Free CellState = iota
	Pending
	Assigned
)

func (s CellState) String() string {
	switch s {
	case Free:
		return "free"
	case Pending:
		return "pending"
	case Assigned:
		return "assigned"
	}
	return fmt.Sprintf("CellState(%d)", int(s))
}

// Cell is one (floor, direction) slot. Car is only meaningful when State is Assigned.
type Cell struct {
	State CellState
	Car   int
}

func (c Cell) IsPending() bool {
	return c.State != Free
}

// Directory is created once per bank and shared by reference with the dispatcher and every car.
type Directory struct {
	mu    sync.Mutex
	table Table
}

func New(maxFloor int) *Directory {
	return &Directory{table: Table{cells: make([][2]Cell, maxFloor+1)}}
}

// TryLock acquires the exclusion without blocking.
func (d *Directory) TryLock() bool {
	return d.mu.TryLock()
}

func (d *Directory) Unlock() {
	d.mu.Unlock()
}

// WithExclusion runs op while holding the exclusion and releases it on every exit path.
// op must not block on anything unrelated to the table.
func (d *Directory) WithExclusion(op func(t *Table) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return op(&d.table)
}

// Snapshot returns a copy of the table indexed [floor][direction].
func (d *Directory) Snapshot() [][2]Cell {
	var cells [][2]Cell
	_ = d.WithExclusion(func(t *Table) error {
		cells = t.Cells()
		return nil
	})
	return cells
}

// Reset clears every hall call.
func (d *Directory) Reset() {
	_ = d.WithExclusion(func(t *Table) error {
		t.Reset()
		return nil
	})
}

// Table is only reachable inside WithExclusion.
type Table struct {
	cells [][2]Cell
}

// Cells returns a copy of the table indexed [floor][direction].
func (t *Table) Cells() [][2]Cell {
	var cells [][2]Cell
	if err := deepcopy.Copy(&cells, t.cells); err != nil {
		panic(err)
	}
	return cells
}

// Reset frees every slot.
func (t *Table) Reset() {
	for floor := range t.cells {
		t.cells[floor] = [2]Cell{}
	}
	slog.Info("Directory reset")
}

func (t *Table) MaxFloor() int {
	return len(t.cells) - 1
}

func (t *Table) Cell(floor int, dir types.Direction) Cell {
	return t.cells[floor][dir]
}

func (t *Table) Pending(floor int, dir types.Direction) bool {
	return t.cells[floor][dir].IsPending()
}

// AssignedTo returns the car serving the call, ok is false when nobody is.
func (t *Table) AssignedTo(floor int, dir types.Direction) (car int, ok bool) {
	c := t.cells[floor][dir]
	return c.Car, c.State == Assigned
}

// Request marks a free slot pending. It reports false when the call was already pending.
func (t *Table) Request(floor int, dir types.Direction) bool {
	if t.cells[floor][dir].IsPending() {
		return false
	}
	t.cells[floor][dir] = Cell{State: Pending}
	return true
}

// Assign binds a pending call to car. Assigning a free slot is a programming error.
func (t *Table) Assign(floor int, dir types.Direction, car int) {
	if !t.cells[floor][dir].IsPending() {
		panic(fmt.Sprintf("directory: assigning car %d to free call %v(%d)", car, dir, floor))
	}
	t.cells[floor][dir] = Cell{State: Assigned, Car: car}
}

// Clear frees the slot and reports whether a call was pending.
func (t *Table) Clear(floor int, dir types.Direction) bool {
	wasPending := t.cells[floor][dir].IsPending()
	t.cells[floor][dir] = Cell{}
	return wasPending
}

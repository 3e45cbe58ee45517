package parking

import (
	"fmt"
	"sync"
)

// SlotRegistry owns a fixed pool of numbered slots and hands out contiguous
// runs of them first-fit. It never compacts: free slots that are not adjacent
// cannot serve a multi-slot vehicle.
type SlotRegistry struct {
	mu       sync.Mutex
	capacity int
	slots    []*Slot
	occupied int
	clock    Clock
}

type StatusSummary struct {
	Capacity      int     `json:"capacity"`
	Free          int     `json:"free"`
	Occupied      int     `json:"occupied"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

func NewSlotRegistry(capacity int, clock Clock) *SlotRegistry {
	if capacity < 0 {
		capacity = 0
	}
	if clock == nil {
		clock = SystemClock
	}

	slots := make([]*Slot, capacity)
	for i := 0; i < capacity; i++ {
		slots[i] = NewSlot(i + 1)
	}

	return &SlotRegistry{
		capacity: capacity,
		slots:    slots,
		clock:    clock,
	}
}

func (r *SlotRegistry) Capacity() int {
	return r.capacity
}

func (r *SlotRegistry) FreeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capacity - r.occupied
}

func (r *SlotRegistry) OccupiedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.occupied
}

// FindContiguousFree returns the lowest slot number starting a run of n free
// slots. The scan stops at the last slot and does not wrap.
func (r *SlotRegistry) FindContiguousFree(n int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findContiguousFree(n)
}

func (r *SlotRegistry) findContiguousFree(n int) (int, bool) {
	if n <= 0 || n > r.capacity {
		return 0, false
	}

	run := 0
	for _, slot := range r.slots {
		if slot.IsOccupied {
			run = 0
			continue
		}
		run++
		if run == n {
			return slot.Number - n + 1, true
		}
	}
	return 0, false
}

// Reserve occupies slots [start, start+n-1] for the vehicle as one unit.
// Nothing changes unless every target slot exists and is free.
func (r *SlotRegistry) Reserve(start, n int, vehicle *Vehicle) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reserve(start, n, vehicle)
}

func (r *SlotRegistry) reserve(start, n int, vehicle *Vehicle) ([]int, error) {
	if n <= 0 || start < 1 || start > r.capacity || n > r.capacity-start+1 {
		return nil, fmt.Errorf("%w: slots %d..%d outside 1..%d", ErrAllocationConsistency, start, start+n-1, r.capacity)
	}

	for number := start; number < start+n; number++ {
		if r.slots[number-1].IsOccupied {
			return nil, fmt.Errorf("%w: slot %d is already occupied", ErrAllocationConsistency, number)
		}
	}

	now := r.clock.Now()
	reserved := make([]int, 0, n)
	for number := start; number < start+n; number++ {
		r.slots[number-1].Park(vehicle, now)
		reserved = append(reserved, number)
	}
	r.occupied += n

	return reserved, nil
}

// Allocate finds and reserves a run of n slots under a single lock.
func (r *SlotRegistry) Allocate(n int, vehicle *Vehicle) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start, ok := r.findContiguousFree(n)
	if !ok {
		return nil, fmt.Errorf("%w: no run of %d adjacent free slots", ErrInsufficientCapacity, n)
	}
	return r.reserve(start, n, vehicle)
}

// Release frees the given slots. Free or unknown slot numbers are skipped.
func (r *SlotRegistry) Release(numbers []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, number := range numbers {
		if number < 1 || number > r.capacity {
			continue
		}
		slot := r.slots[number-1]
		if !slot.IsOccupied {
			continue
		}
		slot.Leave()
		r.occupied--
	}
}

// Locate returns the slots held by the plate in ascending order.
func (r *SlotRegistry) Locate(plate string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []int
	for _, slot := range r.slots {
		if slot.IsOccupied && slot.Vehicle.Plate == plate {
			found = append(found, slot.Number)
		}
	}
	return found
}

func (r *SlotRegistry) Status() StatusSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := StatusSummary{
		Capacity: r.capacity,
		Free:     r.capacity - r.occupied,
		Occupied: r.occupied,
	}
	if r.capacity > 0 {
		summary.OccupancyRate = float64(r.occupied) / float64(r.capacity) * 100
	}
	return summary
}

// Slots returns a copy of every slot, ordered by number.
func (r *SlotRegistry) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Slot, len(r.slots))
	for i, slot := range r.slots {
		out[i] = *slot
	}
	return out
}

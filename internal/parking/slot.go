package parking

import "time"

type Slot struct {
	Number        int
	IsOccupied    bool
	Vehicle       *Vehicle
	OccupiedSince time.Time
}

func NewSlot(number int) *Slot {
	return &Slot{
		Number:     number,
		IsOccupied: false,
		Vehicle:    nil,
	}
}

// Park returns false and leaves the slot untouched when it is already taken.
func (s *Slot) Park(vehicle *Vehicle, at time.Time) bool {
	if s.IsOccupied {
		return false
	}
	s.Vehicle = vehicle
	s.OccupiedSince = at
	s.IsOccupied = true
	return true
}

// Leave frees the slot and returns whoever was in it; nil for a free slot.
func (s *Slot) Leave() *Vehicle {
	vehicle := s.Vehicle
	s.Vehicle = nil
	s.OccupiedSince = time.Time{}
	s.IsOccupied = false
	return vehicle
}

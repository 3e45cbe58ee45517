package parking

import (
	"testing"
	"time"
)

func TestNewSlot(t *testing.T) {
	slotNumber := 1
	slot := NewSlot(slotNumber)

	if slot.Number != slotNumber {
		t.Errorf("Expected slot number %d, got %d", slotNumber, slot.Number)
	}

	if slot.IsOccupied {
		t.Error("Expected new slot to be unoccupied")
	}

	if slot.Vehicle != nil {
		t.Error("Expected new slot to have no vehicle")
	}
}

func TestSlotPark(t *testing.T) {
	slot := NewSlot(1)
	vehicle := NewVehicle("KA01HH1234", Car)
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	if !slot.Park(vehicle, at) {
		t.Fatal("Expected park on a free slot to succeed")
	}

	if !slot.IsOccupied {
		t.Error("Expected slot to be occupied after parking")
	}

	if slot.Vehicle != vehicle {
		t.Error("Expected slot to contain the parked vehicle")
	}

	if !slot.OccupiedSince.Equal(at) {
		t.Errorf("Expected occupied since %v, got %v", at, slot.OccupiedSince)
	}
}

func TestSlotParkWhenTaken(t *testing.T) {
	slot := NewSlot(1)
	first := NewVehicle("KA01HH1234", Car)
	slot.Park(first, time.Now())

	if slot.Park(NewVehicle("KA01HH9999", Car), time.Now()) {
		t.Error("Expected park on an occupied slot to fail")
	}

	if slot.Vehicle != first {
		t.Error("Expected original vehicle to stay in the slot")
	}
}

func TestSlotLeave(t *testing.T) {
	slot := NewSlot(1)
	vehicle := NewVehicle("KA01HH1234", Car)

	slot.Park(vehicle, time.Now())
	leavingVehicle := slot.Leave()

	if slot.IsOccupied {
		t.Error("Expected slot to be unoccupied after leaving")
	}

	if slot.Vehicle != nil {
		t.Error("Expected slot to have no vehicle after leaving")
	}

	if !slot.OccupiedSince.IsZero() {
		t.Error("Expected occupied time to be cleared after leaving")
	}

	if leavingVehicle != vehicle {
		t.Error("Expected leaving vehicle to be the same as parked vehicle")
	}
}

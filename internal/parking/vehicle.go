package parking

import (
	"fmt"
	"strings"
)

// Category is the vehicle class. It decides the slot footprint and which
// rate applies at the exit gate.
type Category int

const (
	Car Category = iota + 1
	Motorcycle
	Truck
	Bus
)

type categoryInfo struct {
	label string
	slots int
}

var categories = map[Category]categoryInfo{
	Car:        {label: "Car", slots: 1},
	Motorcycle: {label: "Motorcycle", slots: 1},
	Truck:      {label: "Truck", slots: 2},
	Bus:        {label: "Bus", slots: 3},
}

// Categories lists the recognised categories in display order.
func Categories() []Category {
	return []Category{Car, Motorcycle, Truck, Bus}
}

// ParseCategory classifies a category name, ignoring case.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	for _, c := range Categories() {
		if strings.EqualFold(categories[c].label, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedVehicleCategory, name)
}

func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// SlotsRequired is the number of contiguous slots the category occupies.
func (c Category) SlotsRequired() int {
	return categories[c].slots
}

type Vehicle struct {
	Plate    string
	Category Category
}

func NewVehicle(plate string, category Category) *Vehicle {
	return &Vehicle{
		Plate:    plate,
		Category: category,
	}
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("%s - %s", v.Category, v.Plate)
}

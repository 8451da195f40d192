package enums

import "fmt"

// FoodLocation identifies where an item is stored in the household.
type FoodLocation string

const (
	FoodLocationFridge FoodLocation = "fridge"
	FoodLocationPantry FoodLocation = "pantry"
)

var validFoodLocations = []FoodLocation{
	FoodLocationFridge,
	FoodLocationPantry,
}

// String implements fmt.Stringer.
func (l FoodLocation) String() string {
	return string(l)
}

// IsValid reports whether the value is a known FoodLocation.
func (l FoodLocation) IsValid() bool {
	for _, candidate := range validFoodLocations {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseFoodLocation converts raw input into a FoodLocation.
func ParseFoodLocation(value string) (FoodLocation, error) {
	for _, candidate := range validFoodLocations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food location %q", value)
}

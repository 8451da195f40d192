package enums

import "fmt"

// FoodStatus tracks where an item sits in its shelf life.
type FoodStatus string

const (
	FoodStatusFresh    FoodStatus = "fresh"
	FoodStatusExpiring FoodStatus = "expiring"
	FoodStatusExpired  FoodStatus = "expired"
	FoodStatusConsumed FoodStatus = "consumed"
)

var validFoodStatuses = []FoodStatus{
	FoodStatusFresh,
	FoodStatusExpiring,
	FoodStatusExpired,
	FoodStatusConsumed,
}

// String implements fmt.Stringer.
func (s FoodStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FoodStatus.
func (s FoodStatus) IsValid() bool {
	for _, candidate := range validFoodStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is pinned by the user rather than
// derived from the expiration date. Consumed items are never reclassified.
func (s FoodStatus) IsTerminal() bool {
	return s == FoodStatusConsumed
}

// ParseFoodStatus converts raw input into a FoodStatus.
func ParseFoodStatus(value string) (FoodStatus, error) {
	for _, candidate := range validFoodStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food status %q", value)
}

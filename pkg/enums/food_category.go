package enums

import "fmt"

// FoodCategory labels the broad kind of grocery an item belongs to.
type FoodCategory string

const (
	FoodCategoryVegetables FoodCategory = "vegetables"
	FoodCategoryFruits     FoodCategory = "fruits"
	FoodCategoryDairy      FoodCategory = "dairy"
	FoodCategoryMeat       FoodCategory = "meat"
	FoodCategoryBeverages  FoodCategory = "beverages"
	FoodCategorySauces     FoodCategory = "sauces"
	FoodCategorySnacks     FoodCategory = "snacks"
	FoodCategoryGrains     FoodCategory = "grains"
	FoodCategoryOther      FoodCategory = "other"
)

var validFoodCategories = []FoodCategory{
	FoodCategoryVegetables,
	FoodCategoryFruits,
	FoodCategoryDairy,
	FoodCategoryMeat,
	FoodCategoryBeverages,
	FoodCategorySauces,
	FoodCategorySnacks,
	FoodCategoryGrains,
	FoodCategoryOther,
}

// String implements fmt.Stringer.
func (c FoodCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known FoodCategory.
func (c FoodCategory) IsValid() bool {
	for _, candidate := range validFoodCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseFoodCategory converts raw input into a FoodCategory.
func ParseFoodCategory(value string) (FoodCategory, error) {
	for _, candidate := range validFoodCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food category %q", value)
}

// Package meal reconciles estimator output, catalog picks and manual edits
// into one item list whose totals always match the items.
package meal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// DefaultMealName is used when an entry is finalized without items.
const DefaultMealName = "Nowy posiłek"

// DefaultQuantity replaces an absent item quantity at finalize time.
const DefaultQuantity = "100g"

// Field names accepted by EditItem.
const (
	FieldName     = "name"
	FieldQuantity = "quantity"
	FieldCalories = "calories"
	FieldProtein  = "protein"
	FieldCarbs    = "carbs"
	FieldFats     = "fats"
)

// FromEstimate accepts an estimator result as-is, including its totals.
func FromEstimate(res *domain.AnalysisResult) domain.AnalysisResult {
	if res == nil {
		return domain.AnalysisResult{Items: []domain.FoodItem{}}
	}
	out := res.Clone()
	if out.Items == nil {
		out.Items = []domain.FoodItem{}
	}
	return out
}

// AddProduct appends a catalog product. Without a current result the product
// becomes the whole meal and its values become the totals.
func AddProduct(current *domain.AnalysisResult, p domain.Product) domain.AnalysisResult {
	item := domain.FoodItem{
		Name:     p.Name,
		Calories: p.Calories,
		Protein:  p.Protein,
		Carbs:    p.Carbs,
		Fats:     p.Fats,
		Quantity: p.Quantity,
	}
	if current == nil {
		return domain.AnalysisResult{
			Items:         []domain.FoodItem{item},
			TotalCalories: p.Calories,
			TotalProtein:  p.Protein,
			TotalCarbs:    p.Carbs,
			TotalFats:     p.Fats,
			Confidence:    1,
		}
	}
	out := current.Clone()
	out.Items = append(out.Items, item)
	return Recompute(out)
}

// EditItem sets one field of the item at index and recomputes the totals.
func EditItem(res domain.AnalysisResult, index int, field, value string) (domain.AnalysisResult, error) {
	if index < 0 || index >= len(res.Items) {
		return res, fmt.Errorf("edit item %d of %d: %w", index, len(res.Items), domain.ErrIndexOutOfRange)
	}
	out := res.Clone()
	item := &out.Items[index]
	switch field {
	case FieldName:
		item.Name = value
	case FieldQuantity:
		item.Quantity = value
	case FieldCalories:
		item.Calories = ParseAmount(value)
	case FieldProtein:
		item.Protein = ParseAmount(value)
	case FieldCarbs:
		item.Carbs = ParseAmount(value)
	case FieldFats:
		item.Fats = ParseAmount(value)
	default:
		return res, fmt.Errorf("edit item field %q: %w", field, domain.ErrInvalidField)
	}
	return Recompute(out), nil
}

// RemoveItem drops the item at index and recomputes the totals. Removing the
// last item leaves an empty, zero-total result.
func RemoveItem(res domain.AnalysisResult, index int) (domain.AnalysisResult, error) {
	if index < 0 || index >= len(res.Items) {
		return res, fmt.Errorf("remove item %d of %d: %w", index, len(res.Items), domain.ErrIndexOutOfRange)
	}
	out := res.Clone()
	out.Items = append(out.Items[:index], out.Items[index+1:]...)
	return Recompute(out), nil
}

// Recompute derives all four totals from the item list.
func Recompute(res domain.AnalysisResult) domain.AnalysisResult {
	kcal, protein, carbs, fats := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range res.Items {
		kcal = kcal.Add(decimal.NewFromFloat(it.Calories))
		protein = protein.Add(decimal.NewFromFloat(it.Protein))
		carbs = carbs.Add(decimal.NewFromFloat(it.Carbs))
		fats = fats.Add(decimal.NewFromFloat(it.Fats))
	}
	res.TotalCalories = kcal.InexactFloat64()
	res.TotalProtein = protein.InexactFloat64()
	res.TotalCarbs = carbs.InexactFloat64()
	res.TotalFats = fats.InexactFloat64()
	return res
}

// ParseAmount coerces user input to a non-negative number. Anything that is
// not a finite number, including an empty string, becomes 0. A decimal comma
// is accepted.
func ParseAmount(value string) float64 {
	s := strings.TrimSpace(strings.Replace(value, ",", ".", 1))
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// Finalize turns a reconciled result into a diary entry. Items get positional
// IDs and a default quantity; totals are copied verbatim. Nothing is stored.
func Finalize(res domain.AnalysisResult, date, imageRef, recipe string) domain.DiaryEntry {
	entry := domain.DiaryEntry{
		ID:            uuid.NewString(),
		Date:          date,
		MealName:      DefaultMealName,
		Items:         make([]domain.FoodItem, len(res.Items)),
		TotalCalories: res.TotalCalories,
		TotalProtein:  res.TotalProtein,
		TotalCarbs:    res.TotalCarbs,
		TotalFats:     res.TotalFats,
		ImageRef:      imageRef,
		Recipe:        recipe,
	}
	if len(res.Items) > 0 && res.Items[0].Name != "" {
		entry.MealName = res.Items[0].Name
	}
	for i, it := range res.Items {
		it.ID = strconv.Itoa(i)
		if strings.TrimSpace(it.Quantity) == "" {
			it.Quantity = DefaultQuantity
		}
		entry.Items[i] = it
	}
	return entry
}

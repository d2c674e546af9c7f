package domain

import "time"

// DateLayout is the calendar-day form used for DiaryEntry.Date.
const DateLayout = time.DateOnly

// FoodItem is one line of a meal. ID is only unique within its entry.
type FoodItem struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Quantity string  `json:"quantity,omitempty"`
}

// AnalysisResult is a meal estimate being reconciled before it is saved.
type AnalysisResult struct {
	Items         []FoodItem `json:"items"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalCarbs    float64    `json:"totalCarbs"`
	TotalFats     float64    `json:"totalFats"`
	Confidence    float64    `json:"confidence"`
}

// Clone returns a copy that shares no item storage with r.
func (r AnalysisResult) Clone() AnalysisResult {
	r.Items = append([]FoodItem(nil), r.Items...)
	return r
}

type DiaryEntry struct {
	ID            string     `json:"id"`
	Date          string     `json:"date"`
	MealName      string     `json:"mealName"`
	Items         []FoodItem `json:"items"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalCarbs    float64    `json:"totalCarbs"`
	TotalFats     float64    `json:"totalFats"`
	ImageRef      string     `json:"imageRef,omitempty"`
	Recipe        string     `json:"recipe,omitempty"`
}

func (e DiaryEntry) Clone() DiaryEntry {
	e.Items = append([]FoodItem(nil), e.Items...)
	return e
}

// EntryPatch is a partial DiaryEntry. Nil fields are left untouched.
type EntryPatch struct {
	Date          *string     `json:"date,omitempty"`
	MealName      *string     `json:"mealName,omitempty"`
	Items         *[]FoodItem `json:"items,omitempty"`
	TotalCalories *float64    `json:"totalCalories,omitempty"`
	TotalProtein  *float64    `json:"totalProtein,omitempty"`
	TotalCarbs    *float64    `json:"totalCarbs,omitempty"`
	TotalFats     *float64    `json:"totalFats,omitempty"`
	ImageRef      *string     `json:"imageRef,omitempty"`
	Recipe        *string     `json:"recipe,omitempty"`
}

// Apply shallow-merges the present fields of p into e.
func (p EntryPatch) Apply(e *DiaryEntry) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.MealName != nil {
		e.MealName = *p.MealName
	}
	if p.Items != nil {
		e.Items = append([]FoodItem(nil), (*p.Items)...)
	}
	if p.TotalCalories != nil {
		e.TotalCalories = *p.TotalCalories
	}
	if p.TotalProtein != nil {
		e.TotalProtein = *p.TotalProtein
	}
	if p.TotalCarbs != nil {
		e.TotalCarbs = *p.TotalCarbs
	}
	if p.TotalFats != nil {
		e.TotalFats = *p.TotalFats
	}
	if p.ImageRef != nil {
		e.ImageRef = *p.ImageRef
	}
	if p.Recipe != nil {
		e.Recipe = *p.Recipe
	}
}

// Product is a reusable catalog item keyed case-insensitively by Name.
type Product struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Quantity string  `json:"quantity,omitempty"`
}

// ProductEstimate is the nutrition the estimator suggests for a product name.
type ProductEstimate struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Quantity string  `json:"quantity"`
}

type Recipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// Totals is the per-day sum of the four total fields.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

type DayPoint struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
}

type DayGroup struct {
	Date    string       `json:"date"`
	Entries []DiaryEntry `json:"entries"`
	Totals  Totals       `json:"totals"`
}

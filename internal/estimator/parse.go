package estimator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// wire types use pointers so an absent field can be told apart from zero.
type wireItem struct {
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fats     *float64 `json:"fats"`
	Quantity string   `json:"quantity"`
}

type wireMeal struct {
	Items         *[]wireItem `json:"items"`
	TotalCalories *float64    `json:"totalCalories"`
	TotalProtein  *float64    `json:"totalProtein"`
	TotalCarbs    *float64    `json:"totalCarbs"`
	TotalFats     *float64    `json:"totalFats"`
	Confidence    *float64    `json:"confidence"`
}

type wireProduct struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fats     *float64 `json:"fats"`
	Quantity string   `json:"quantity"`
}

type wireRecipe struct {
	Title        *string   `json:"title"`
	Ingredients  *[]string `json:"ingredients"`
	Instructions *[]string `json:"instructions"`
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decode(raw string, v any) error {
	s := StripFences(raw)
	if s == "" {
		return errors.New("empty response")
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

// amount checks a required non-negative number.
func amount(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("missing %s", field)
	}
	if *v < 0 {
		return 0, fmt.Errorf("negative %s: %v", field, *v)
	}
	return *v, nil
}

func parseMeal(raw string) (*domain.AnalysisResult, error) {
	var w wireMeal
	if err := decode(raw, &w); err != nil {
		return nil, err
	}
	if w.Items == nil {
		return nil, errors.New("missing items")
	}

	res := &domain.AnalysisResult{Items: make([]domain.FoodItem, 0, len(*w.Items))}
	for i, wi := range *w.Items {
		if wi.Name == nil || strings.TrimSpace(*wi.Name) == "" {
			return nil, fmt.Errorf("item %d: missing name", i)
		}
		item := domain.FoodItem{Name: *wi.Name, Quantity: wi.Quantity}
		var err error
		if item.Calories, err = amount("calories", wi.Calories); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if item.Protein, err = amount("protein", wi.Protein); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if item.Carbs, err = amount("carbs", wi.Carbs); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if item.Fats, err = amount("fats", wi.Fats); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		res.Items = append(res.Items, item)
	}

	var err error
	if res.TotalCalories, err = amount("totalCalories", w.TotalCalories); err != nil {
		return nil, err
	}
	if res.TotalProtein, err = amount("totalProtein", w.TotalProtein); err != nil {
		return nil, err
	}
	if res.TotalCarbs, err = amount("totalCarbs", w.TotalCarbs); err != nil {
		return nil, err
	}
	if res.TotalFats, err = amount("totalFats", w.TotalFats); err != nil {
		return nil, err
	}
	if res.Confidence, err = amount("confidence", w.Confidence); err != nil {
		return nil, err
	}
	if res.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %v", res.Confidence)
	}
	return res, nil
}

func parseProduct(raw string) (*domain.ProductEstimate, error) {
	var w wireProduct
	if err := decode(raw, &w); err != nil {
		return nil, err
	}
	est := &domain.ProductEstimate{Quantity: strings.TrimSpace(w.Quantity)}
	var err error
	if est.Calories, err = amount("calories", w.Calories); err != nil {
		return nil, err
	}
	if est.Protein, err = amount("protein", w.Protein); err != nil {
		return nil, err
	}
	if est.Carbs, err = amount("carbs", w.Carbs); err != nil {
		return nil, err
	}
	if est.Fats, err = amount("fats", w.Fats); err != nil {
		return nil, err
	}
	return est, nil
}

func parseRecipe(raw string) (*domain.Recipe, error) {
	var w wireRecipe
	if err := decode(raw, &w); err != nil {
		return nil, err
	}
	if w.Title == nil || strings.TrimSpace(*w.Title) == "" {
		return nil, errors.New("missing title")
	}
	if w.Ingredients == nil {
		return nil, errors.New("missing ingredients")
	}
	if w.Instructions == nil {
		return nil, errors.New("missing instructions")
	}
	return &domain.Recipe{
		Title:        *w.Title,
		Ingredients:  *w.Ingredients,
		Instructions: *w.Instructions,
	}, nil
}

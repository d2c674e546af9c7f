package estimator

import (
	"fmt"
	"strings"
)

const mealShape = `{"items":[{"name":string,"calories":number,"protein":number,"carbs":number,"fats":number,"quantity":string}],` +
	`"totalCalories":number,"totalProtein":number,"totalCarbs":number,"totalFats":number,"confidence":number}`

const productShape = `{"calories":number,"protein":number,"carbs":number,"fats":number,"quantity":string}`

const recipeShape = `{"title":string,"ingredients":[string],"instructions":[string]}`

func imagePrompt(language string) string {
	return fmt.Sprintf(`Analyze this food image. Identify each food item and estimate its weight/quantity, calories, and macronutrients (protein, carbs, fats) in grams. Provide totals for the whole meal and a confidence between 0 and 1.
Return the data in %s language.
Respond with JSON only, in this shape: %s`, language, mealShape)
}

func textPrompt(language, description string) string {
	return fmt.Sprintf(`Estimate the nutrition of this meal description: %q.
Identify each food item and estimate its weight/quantity, calories, and macronutrients (protein, carbs, fats) in grams. Provide totals for the whole meal and a confidence between 0 and 1.
Return the data in %s language.
Respond with JSON only, in this shape: %s`, description, language, mealShape)
}

func productPrompt(language, name string) string {
	return fmt.Sprintf(`Estimate typical nutrition values for the food product %q: calories and macronutrients (protein, carbs, fats) in grams for one typical serving, and name that serving as quantity (for example "100g" or "1 szt.").
Return the data in %s language.
Respond with JSON only, in this shape: %s`, name, language, productShape)
}

func recipePrompt(language string, ingredients []string) string {
	return fmt.Sprintf(`Based on these ingredients: %s, suggest a healthy recipe.
Return as JSON in %s, in this shape: %s`, strings.Join(ingredients, ", "), language, recipeShape)
}

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/service"
	"github.com/vbonduro/nutriscan/internal/store"
)

func summaryCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print today's totals, the last seven days and recent meals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.cleanup()

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			diary, err := loadDiary(cmd.Context(), a)
			if err != nil {
				return err
			}

			summary := service.NewDashboard(diary).Summary(time.Now().In(loc))
			printSummary(cmd.OutOrStdout(), summary, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 3, "number of diary days to list")
	return cmd
}

func productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.cleanup()

			// Listing never asks the estimator.
			catalog := service.NewCatalog(store.NewProductStore(a.database), nil, a.logger)
			products, err := catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
}

func printSummary(w io.Writer, s service.Summary, days int) {
	fmt.Fprintf(w, "Today %s: %.0f / %.0f kcal (%d%%)\n", s.Date, s.Today.Calories, s.GoalKcal, s.Progress)
	fmt.Fprintf(w, "  protein %.1fg  carbs %.1fg  fats %.1fg\n\n", s.Today.Protein, s.Today.Carbs, s.Today.Fats)

	for _, p := range s.Week {
		fmt.Fprintf(w, "%-6s %6.0f kcal %s\n", p.Label, p.Calories, bar(p.Calories, s.GoalKcal))
	}

	for i, day := range s.Days {
		if i >= days {
			break
		}
		fmt.Fprintf(w, "\n%s  %.0f kcal\n", day.Date, day.Totals.Calories)
		for _, e := range day.Entries {
			fmt.Fprintf(w, "  %-30s %6.0f kcal  %d items\n", e.MealName, e.TotalCalories, len(e.Items))
		}
	}
}

func printProducts(w io.Writer, products []domain.Product) {
	for _, p := range products {
		fmt.Fprintf(w, "%-32s %-8s %6.0f kcal  P %5.1f  C %5.1f  F %5.1f\n",
			p.Name, p.Quantity, p.Calories, p.Protein, p.Carbs, p.Fats)
	}
}

// bar draws calories as a share of goal, twenty cells wide, capped at full.
func bar(calories, goal float64) string {
	const width = 20
	if goal <= 0 {
		return ""
	}
	n := int(calories / goal * width)
	n = max(0, min(n, width))
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", width-n) + "]"
}

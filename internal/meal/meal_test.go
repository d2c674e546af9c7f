package meal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/nutriscan/internal/domain"
)

func sampleResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		Items: []domain.FoodItem{
			{Name: "Jajko", Calories: 70, Protein: 6, Carbs: 0.5, Fats: 5, Quantity: "1 szt."},
			{Name: "Chleb żytni", Calories: 250, Protein: 7, Carbs: 48, Fats: 3},
		},
		// Estimator totals are deliberately not the item sums.
		TotalCalories: 330,
		TotalProtein:  13,
		TotalCarbs:    50,
		TotalFats:     8,
		Confidence:    0.8,
	}
}

func assertConsistent(t *testing.T, res domain.AnalysisResult) {
	t.Helper()
	var kcal, protein, carbs, fats float64
	for _, it := range res.Items {
		kcal += it.Calories
		protein += it.Protein
		carbs += it.Carbs
		fats += it.Fats
	}
	assert.InDelta(t, kcal, res.TotalCalories, 1e-9)
	assert.InDelta(t, protein, res.TotalProtein, 1e-9)
	assert.InDelta(t, carbs, res.TotalCarbs, 1e-9)
	assert.InDelta(t, fats, res.TotalFats, 1e-9)
}

func TestFromEstimateKeepsEstimatorTotals(t *testing.T) {
	in := sampleResult()
	out := FromEstimate(&in)

	assert.Equal(t, 330.0, out.TotalCalories)
	assert.Equal(t, 0.8, out.Confidence)

	// The copy must not share item storage with the estimator result.
	out.Items[0].Name = "changed"
	assert.Equal(t, "Jajko", in.Items[0].Name)
}

func TestFromEstimateNil(t *testing.T) {
	out := FromEstimate(nil)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestAddProduct_NoCurrentResult(t *testing.T) {
	p := domain.Product{Name: "Banan", Calories: 89, Protein: 1.1, Carbs: 23, Fats: 0.3, Quantity: "1 szt."}

	out := AddProduct(nil, p)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "Banan", out.Items[0].Name)
	assert.Equal(t, 89.0, out.TotalCalories)
	assert.Equal(t, 1.1, out.TotalProtein)
	assert.Equal(t, 23.0, out.TotalCarbs)
	assert.Equal(t, 0.3, out.TotalFats)
}

func TestAddProduct_AppendsAndRecomputes(t *testing.T) {
	current := sampleResult()
	p := domain.Product{Name: "Banan", Calories: 89, Protein: 1.1, Carbs: 23, Fats: 0.3}

	out := AddProduct(&current, p)

	require.Len(t, out.Items, 3)
	assert.Equal(t, "Banan", out.Items[2].Name)
	// Prior estimator total (330) is not trusted: 70 + 250 + 89.
	assert.Equal(t, 409.0, out.TotalCalories)
	assertConsistent(t, out)
	assert.Len(t, current.Items, 2, "input must not be mutated")
}

func TestEditItem(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		check func(t *testing.T, it domain.FoodItem)
	}{
		{
			name:  "name is stored raw",
			field: FieldName,
			value: "  Jajko sadzone ",
			check: func(t *testing.T, it domain.FoodItem) { assert.Equal(t, "  Jajko sadzone ", it.Name) },
		},
		{
			name:  "quantity is stored raw",
			field: FieldQuantity,
			value: "2 szt.",
			check: func(t *testing.T, it domain.FoodItem) { assert.Equal(t, "2 szt.", it.Quantity) },
		},
		{
			name:  "calories numeric",
			field: FieldCalories,
			value: "140",
			check: func(t *testing.T, it domain.FoodItem) { assert.Equal(t, 140.0, it.Calories) },
		},
		{
			name:  "protein decimal comma",
			field: FieldProtein,
			value: "12,5",
			check: func(t *testing.T, it domain.FoodItem) { assert.Equal(t, 12.5, it.Protein) },
		},
		{
			name:  "carbs non-numeric becomes zero",
			field: FieldCarbs,
			value: "dużo",
			check: func(t *testing.T, it domain.FoodItem) { assert.Equal(t, 0.0, it.Carbs) },
		},
		{
			name:  "fats empty becomes zero",
			field: FieldFats,
			value: "",
			check: func(t *testing.T, it domain.FoodItem) { assert.Equal(t, 0.0, it.Fats) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EditItem(sampleResult(), 0, tt.field, tt.value)
			require.NoError(t, err)
			tt.check(t, out.Items[0])
			assertConsistent(t, out)
		})
	}
}

func TestEditItem_RecomputesAfterEveryEdit(t *testing.T) {
	out, err := EditItem(sampleResult(), 1, FieldCalories, "100")
	require.NoError(t, err)
	assert.Equal(t, 170.0, out.TotalCalories)

	out, err = EditItem(out, 0, FieldFats, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.TotalFats)
	assertConsistent(t, out)
}

func TestEditItem_OverflowingAmountBecomesZero(t *testing.T) {
	var out domain.AnalysisResult
	var err error
	require.NotPanics(t, func() {
		out, err = EditItem(sampleResult(), 0, FieldCalories, "1e400")
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Items[0].Calories)
	assertConsistent(t, out)
}

func TestEditItem_IndexOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 2, 10} {
		_, err := EditItem(sampleResult(), idx, FieldName, "x")
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	}
}

func TestEditItem_UnknownField(t *testing.T) {
	_, err := EditItem(sampleResult(), 0, "sugar", "10")
	assert.ErrorIs(t, err, domain.ErrInvalidField)
}

func TestEditItem_DoesNotMutateInput(t *testing.T) {
	in := sampleResult()
	_, err := EditItem(in, 0, FieldCalories, "999")
	require.NoError(t, err)
	assert.Equal(t, 70.0, in.Items[0].Calories)
	assert.Equal(t, 330.0, in.TotalCalories)
}

func TestRemoveItem(t *testing.T) {
	out, err := RemoveItem(sampleResult(), 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Chleb żytni", out.Items[0].Name)
	assert.Equal(t, 250.0, out.TotalCalories)
	assertConsistent(t, out)
}

func TestRemoveItem_LastItemLeavesZeroTotals(t *testing.T) {
	single := AddProduct(nil, domain.Product{Name: "Jabłko", Calories: 52, Protein: 0.3, Carbs: 14, Fats: 0.2})

	out, err := RemoveItem(single, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Zero(t, out.TotalCalories)
	assert.Zero(t, out.TotalProtein)
	assert.Zero(t, out.TotalCarbs)
	assert.Zero(t, out.TotalFats)
}

func TestRemoveItem_IndexOutOfRange(t *testing.T) {
	_, err := RemoveItem(domain.AnalysisResult{}, 0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestRecompute_NoFloatDrift(t *testing.T) {
	res := domain.AnalysisResult{Items: []domain.FoodItem{
		{Name: "a", Fats: 0.1},
		{Name: "b", Fats: 0.2},
	}}
	assert.Equal(t, 0.3, Recompute(res).TotalFats)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"42", 42},
		{" 3.5 ", 3.5},
		{"3,5", 3.5},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"12abc", 0},
		{"-5", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e2", 100},
		{"1e400", 0},
		{"1,5e400", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestFinalize_Defaulting(t *testing.T) {
	res := domain.AnalysisResult{
		Items:         []domain.FoodItem{{Name: "Jajko", Calories: 70, Protein: 6, Carbs: 0.5, Fats: 5}},
		TotalCalories: 70,
		TotalProtein:  6,
		TotalCarbs:    0.5,
		TotalFats:     5,
	}

	entry := Finalize(res, "2026-10-19", "photo.jpg", "Jajecznica")

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "2026-10-19", entry.Date)
	assert.Equal(t, "Jajko", entry.MealName)
	require.Len(t, entry.Items, 1)
	assert.Equal(t, "0", entry.Items[0].ID)
	assert.Equal(t, "100g", entry.Items[0].Quantity)
	assert.Equal(t, 70.0, entry.TotalCalories)
	assert.Equal(t, "photo.jpg", entry.ImageRef)
	assert.Equal(t, "Jajecznica", entry.Recipe)
}

func TestFinalize_PositionalIDsAndFreshEntryID(t *testing.T) {
	res := sampleResult()

	a := Finalize(res, "2026-10-19", "", "")
	b := Finalize(res, "2026-10-19", "", "")

	assert.NotEqual(t, a.ID, b.ID)
	require.Len(t, a.Items, 2)
	assert.Equal(t, "0", a.Items[0].ID)
	assert.Equal(t, "1", a.Items[1].ID)
	assert.Equal(t, "1 szt.", a.Items[0].Quantity, "present quantity is kept")
	// Totals are copied verbatim, not recomputed.
	assert.Equal(t, 330.0, a.TotalCalories)
}

func TestFinalize_EmptyResultIsDegenerate(t *testing.T) {
	entry := Finalize(domain.AnalysisResult{}, "2026-10-19", "", "")

	assert.Equal(t, DefaultMealName, entry.MealName)
	assert.Empty(t, entry.Items)
	assert.Zero(t, entry.TotalCalories)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/nutriscan/internal/domain"
)

func newTestCatalog(t *testing.T, est *stubEstimator) *Catalog {
	t.Helper()
	_, products := openTestStores(t)
	if est == nil {
		est = &stubEstimator{}
	}
	return NewCatalog(products, est, testLogger())
}

func TestCatalogList_SeedsEmptyDatabase(t *testing.T) {
	c := newTestCatalog(t, nil)

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultProducts, list)
}

func TestCatalogList_EmptiedCatalogStaysEmpty(t *testing.T) {
	_, products := openTestStores(t)
	ctx := context.Background()

	c := NewCatalog(products, &stubEstimator{}, testLogger())
	list, err := c.List(ctx)
	require.NoError(t, err)
	for _, p := range list {
		require.NoError(t, c.Remove(ctx, p.Name))
	}

	// A fresh process over the same database must not reseed.
	c = NewCatalog(products, &stubEstimator{}, testLogger())
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogSave_CaseInsensitiveDedup(t *testing.T) {
	c := newTestCatalog(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, domain.Product{Name: "  banan ", Calories: 100, Protein: 1, Carbs: 25, Fats: 0.5, Quantity: "1 szt."}))

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(DefaultProducts))

	var matches []domain.Product
	for _, p := range list {
		if p.Name == "banan" || p.Name == "Banan" {
			matches = append(matches, p)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, "banan", matches[0].Name)
	assert.Equal(t, 100.0, matches[0].Calories)
}

func TestCatalogSave_Validation(t *testing.T) {
	c := newTestCatalog(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, c.Save(ctx, domain.Product{Name: "  "}), domain.ErrInvalidField)
	assert.ErrorIs(t, c.Save(ctx, domain.Product{Name: "x", Fats: -1}), domain.ErrInvalidField)
}

func TestCatalogGet(t *testing.T) {
	c := newTestCatalog(t, nil)
	ctx := context.Background()

	p, err := c.Get(ctx, "skyr naturalny")
	require.NoError(t, err)
	assert.Equal(t, "Skyr naturalny", p.Name)
	assert.Equal(t, "150g", p.Quantity)

	_, err = c.Get(ctx, "Tofu")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogRemove(t *testing.T) {
	c := newTestCatalog(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Remove(ctx, "JABŁKO"))
	require.NoError(t, c.Remove(ctx, "not there"))

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(DefaultProducts)-1)
	for _, p := range list {
		assert.NotEqual(t, "Jabłko", p.Name)
	}
}

func TestCatalogEstimate(t *testing.T) {
	est := &stubEstimator{product: &domain.ProductEstimate{Calories: 120, Protein: 8, Carbs: 2, Fats: 9}}
	c := newTestCatalog(t, est)

	p, err := c.Estimate(context.Background(), " Tofu ")
	require.NoError(t, err)
	assert.Equal(t, &domain.Product{Name: "Tofu", Calories: 120, Protein: 8, Carbs: 2, Fats: 9, Quantity: "100g"}, p)

	_, err = c.Get(context.Background(), "Tofu")
	assert.ErrorIs(t, err, domain.ErrNotFound, "estimates are not saved")
}

func TestCatalogEstimate_Failure(t *testing.T) {
	c := newTestCatalog(t, &stubEstimator{err: domain.ErrAnalysisFailed})

	_, err := c.Estimate(context.Background(), "Tofu")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/estimator"
)

const seededKey = "catalog_seeded"

// DefaultProducts is the starter catalog written to an empty database.
var DefaultProducts = []domain.Product{
	{Name: "Pierś z kurczaka (gotowana)", Calories: 165, Protein: 31, Carbs: 0, Fats: 3.6, Quantity: "100g"},
	{Name: "Ryż biały (gotowany)", Calories: 130, Protein: 2.7, Carbs: 28, Fats: 0.3, Quantity: "100g"},
	{Name: "Jajko (rozmiar M)", Calories: 70, Protein: 6, Carbs: 0.5, Fats: 5, Quantity: "1 szt."},
	{Name: "Banan", Calories: 89, Protein: 1.1, Carbs: 23, Fats: 0.3, Quantity: "1 szt."},
	{Name: "Jabłko", Calories: 52, Protein: 0.3, Carbs: 14, Fats: 0.2, Quantity: "100g"},
	{Name: "Skyr naturalny", Calories: 63, Protein: 11, Carbs: 4, Fats: 0, Quantity: "150g"},
	{Name: "Chleb żytni", Calories: 250, Protein: 7, Carbs: 48, Fats: 3, Quantity: "100g"},
}

// productRepository is the subset of store.ProductStore that Catalog requires.
type productRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, name string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) error
	DeleteByName(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int, error)
	Meta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Catalog is the product database offered for quick meal composition.
type Catalog struct {
	store     productRepository
	estimator estimator.Estimator
	logger    *slog.Logger

	seedMu sync.Mutex
	seeded bool
}

func NewCatalog(store productRepository, est estimator.Estimator, logger *slog.Logger) *Catalog {
	return &Catalog{store: store, estimator: est, logger: logger}
}

// List returns the catalog. The first access to a database that has never
// held products writes DefaultProducts. A catalog emptied by the user stays
// empty.
func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	if err := c.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return c.store.List(ctx)
}

func (c *Catalog) Get(ctx context.Context, name string) (*domain.Product, error) {
	if err := c.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	p, err := c.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %q: %w", name, domain.ErrNotFound)
	}
	return p, nil
}

// Save adds p, replacing any product whose name matches ignoring case.
func (c *Catalog) Save(ctx context.Context, p domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("product name: %w", domain.ErrInvalidField)
	}
	if p.Calories < 0 || p.Protein < 0 || p.Carbs < 0 || p.Fats < 0 {
		return fmt.Errorf("product %q has negative values: %w", p.Name, domain.ErrInvalidField)
	}
	if err := c.ensureSeeded(ctx); err != nil {
		return err
	}
	if err := c.store.Upsert(ctx, p); err != nil {
		return err
	}
	c.logger.Info("product saved", "product", p.Name)
	return nil
}

// Remove deletes the product with the given name, ignoring case. Removing an
// unknown product is not an error.
func (c *Catalog) Remove(ctx context.Context, name string) error {
	if err := c.ensureSeeded(ctx); err != nil {
		return err
	}
	removed, err := c.store.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	if removed {
		c.logger.Info("product removed", "product", name)
	}
	return nil
}

// Estimate asks the estimator for the nutrition of a product that is not in
// the catalog yet. Nothing is saved.
func (c *Catalog) Estimate(ctx context.Context, name string) (*domain.Product, error) {
	est, err := c.estimator.EstimateForProductName(ctx, name)
	if err != nil {
		return nil, err
	}
	quantity := est.Quantity
	if quantity == "" {
		quantity = "100g"
	}
	return &domain.Product{
		Name:     strings.TrimSpace(name),
		Calories: est.Calories,
		Protein:  est.Protein,
		Carbs:    est.Carbs,
		Fats:     est.Fats,
		Quantity: quantity,
	}, nil
}

func (c *Catalog) ensureSeeded(ctx context.Context) error {
	c.seedMu.Lock()
	defer c.seedMu.Unlock()
	if c.seeded {
		return nil
	}

	_, done, err := c.store.Meta(ctx, seededKey)
	if err != nil {
		return err
	}
	if !done {
		n, err := c.store.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			for _, p := range DefaultProducts {
				if err := c.store.Upsert(ctx, p); err != nil {
					return fmt.Errorf("failed to seed catalog: %w", err)
				}
			}
			c.logger.Info("catalog seeded", "products", len(DefaultProducts))
		}
		if err := c.store.SetMeta(ctx, seededKey, "1"); err != nil {
			return err
		}
	}
	c.seeded = true
	return nil
}

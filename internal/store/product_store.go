package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// ProductStore persists the product catalog. Names are unique ignoring case.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// List returns the catalog in the order products were first added.
func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, calories, protein, carbs, fats, quantity FROM products ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Name, &p.Calories, &p.Protein, &p.Carbs, &p.Fats, &p.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Get looks a product up by name, ignoring case. It returns nil, nil when
// there is no such product.
func (s *ProductStore) Get(ctx context.Context, name string) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, calories, protein, carbs, fats, quantity FROM products WHERE name_key = ?
	`, nameKey(name)).Scan(&p.Name, &p.Calories, &p.Protein, &p.Carbs, &p.Fats, &p.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// Upsert adds p or replaces the product whose name matches ignoring case.
// A replaced product keeps its position in the list.
func (s *ProductStore) Upsert(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name_key, name, calories, protein, carbs, fats, quantity, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM products))
		ON CONFLICT(name_key) DO UPDATE SET
			name = excluded.name,
			calories = excluded.calories,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fats = excluded.fats,
			quantity = excluded.quantity
	`, nameKey(p.Name), p.Name, p.Calories, p.Protein, p.Carbs, p.Fats, p.Quantity)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// DeleteByName removes the product matching name ignoring case. It reports
// whether a product was removed.
func (s *ProductStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE name_key = ?
	`, nameKey(name))
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *ProductStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// Meta returns the value stored under key and whether it was present.
func (s *ProductStore) Meta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, true, nil
}

func (s *ProductStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

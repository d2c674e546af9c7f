package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EntryStore persists diary entries and their items.
type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

// List returns every entry in insertion order.
func (s *EntryStore) List(ctx context.Context) ([]domain.DiaryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, meal_name, total_calories, total_protein, total_carbs, total_fats, image_ref, recipe
		FROM entries ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	entries := []domain.DiaryEntry{}
	index := make(map[string]int)
	for rows.Next() {
		var e domain.DiaryEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.MealName, &e.TotalCalories, &e.TotalProtein, &e.TotalCarbs, &e.TotalFats, &e.ImageRef, &e.Recipe); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Items = []domain.FoodItem{}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, item_id, name, calories, protein, carbs, fats, quantity
		FROM entry_items ORDER BY entry_id, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry items: %w", err)
	}
	defer func() {
		if err := itemRows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	for itemRows.Next() {
		var entryID string
		var it domain.FoodItem
		if err := itemRows.Scan(&entryID, &it.ID, &it.Name, &it.Calories, &it.Protein, &it.Carbs, &it.Fats, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan entry item: %w", err)
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		entries[i].Items = append(entries[i].Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry items: %w", err)
	}

	return entries, nil
}

// GetByID returns nil, nil when no entry has the given id.
func (s *EntryStore) GetByID(ctx context.Context, id string) (*domain.DiaryEntry, error) {
	return getEntry(ctx, s.db, id)
}

// Create stores a new entry. The id must not already exist.
func (s *EntryStore) Create(ctx context.Context, e domain.DiaryEntry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, date, meal_name, total_calories, total_protein, total_carbs, total_fats, image_ref, recipe, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM entries))
		`, e.ID, e.Date, e.MealName, e.TotalCalories, e.TotalProtein, e.TotalCarbs, e.TotalFats, e.ImageRef, e.Recipe)
		if err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}
		return insertItems(ctx, tx, e.ID, e.Items)
	})
}

// Update merges patch into the stored entry and returns the result. It fails
// with domain.ErrNotFound when the entry does not exist.
func (s *EntryStore) Update(ctx context.Context, id string, patch domain.EntryPatch) (*domain.DiaryEntry, error) {
	var merged *domain.DiaryEntry
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
		}
		patch.Apply(e)

		_, err = tx.ExecContext(ctx, `
			UPDATE entries SET date = ?, meal_name = ?, total_calories = ?, total_protein = ?,
				total_carbs = ?, total_fats = ?, image_ref = ?, recipe = ?
			WHERE id = ?
		`, e.Date, e.MealName, e.TotalCalories, e.TotalProtein, e.TotalCarbs, e.TotalFats, e.ImageRef, e.Recipe, id)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		if patch.Items != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM entry_items WHERE entry_id = ?`, id); err != nil {
				return fmt.Errorf("failed to clear entry items: %w", err)
			}
			if err := insertItems(ctx, tx, id, e.Items); err != nil {
				return err
			}
		}
		merged = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes an entry and its items. Deleting an unknown id is not an error.
func (s *EntryStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM entries WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (s *EntryStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			slog.Error("failed to roll back transaction", "error", rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func getEntry(ctx context.Context, q queryer, id string) (*domain.DiaryEntry, error) {
	e := &domain.DiaryEntry{}
	err := q.QueryRowContext(ctx, `
		SELECT id, date, meal_name, total_calories, total_protein, total_carbs, total_fats, image_ref, recipe
		FROM entries WHERE id = ?
	`, id).Scan(&e.ID, &e.Date, &e.MealName, &e.TotalCalories, &e.TotalProtein, &e.TotalCarbs, &e.TotalFats, &e.ImageRef, &e.Recipe)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT item_id, name, calories, protein, carbs, fats, quantity
		FROM entry_items WHERE entry_id = ? ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	e.Items = []domain.FoodItem{}
	for rows.Next() {
		var it domain.FoodItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Calories, &it.Protein, &it.Carbs, &it.Fats, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan entry item: %w", err)
		}
		e.Items = append(e.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry items: %w", err)
	}

	return e, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, entryID string, items []domain.FoodItem) error {
	for pos, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entry_items (entry_id, position, item_id, name, calories, protein, carbs, fats, quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, entryID, pos, it.ID, it.Name, it.Calories, it.Protein, it.Carbs, it.Fats, it.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert entry item %d: %w", pos, err)
		}
	}
	return nil
}

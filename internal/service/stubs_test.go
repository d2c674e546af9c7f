package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/nutriscan/internal/db"
	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubEstimator is a minimal estimator.Estimator for tests. block, when set,
// is waited on before an estimate returns.
type stubEstimator struct {
	result  *domain.AnalysisResult
	product *domain.ProductEstimate
	recipe  *domain.Recipe
	err     error
	block   chan struct{}

	mu          sync.Mutex
	ingredients []string
	calls       int
}

func (s *stubEstimator) wait() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
}

func (s *stubEstimator) EstimateFromImage(_ context.Context, _ io.Reader, _ string) (*domain.AnalysisResult, error) {
	s.wait()
	return s.clone(), s.err
}

func (s *stubEstimator) EstimateFromText(_ context.Context, _ string) (*domain.AnalysisResult, error) {
	s.wait()
	return s.clone(), s.err
}

func (s *stubEstimator) EstimateForProductName(_ context.Context, _ string) (*domain.ProductEstimate, error) {
	s.wait()
	return s.product, s.err
}

func (s *stubEstimator) SuggestRecipe(_ context.Context, ingredients []string) (*domain.Recipe, error) {
	s.wait()
	s.mu.Lock()
	s.ingredients = ingredients
	s.mu.Unlock()
	return s.recipe, s.err
}

func (s *stubEstimator) clone() *domain.AnalysisResult {
	if s.result == nil {
		return nil
	}
	r := s.result.Clone()
	return &r
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	saved   map[string][]byte
	saveErr error
	n       int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.n++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.n)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	delete(s.saved, key)
	return nil
}

// flakyEntries wraps a real EntryStore and fails the next call of a verb
// when told to.
type flakyEntries struct {
	*store.EntryStore
	failList, failCreate, failUpdate, failDelete error
}

func (f *flakyEntries) List(ctx context.Context) ([]domain.DiaryEntry, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	return f.EntryStore.List(ctx)
}

func (f *flakyEntries) Create(ctx context.Context, e domain.DiaryEntry) error {
	if err := f.failCreate; err != nil {
		f.failCreate = nil
		return err
	}
	return f.EntryStore.Create(ctx, e)
}

func (f *flakyEntries) Update(ctx context.Context, id string, p domain.EntryPatch) (*domain.DiaryEntry, error) {
	if err := f.failUpdate; err != nil {
		f.failUpdate = nil
		return nil, err
	}
	return f.EntryStore.Update(ctx, id, p)
}

func (f *flakyEntries) Delete(ctx context.Context, id string) error {
	if err := f.failDelete; err != nil {
		f.failDelete = nil
		return err
	}
	return f.EntryStore.Delete(ctx, id)
}

func openTestStores(t *testing.T) (*flakyEntries, *store.ProductStore) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return &flakyEntries{EntryStore: store.NewEntryStore(d)}, store.NewProductStore(d)
}

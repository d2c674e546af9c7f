package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/estimator"
	"github.com/vbonduro/nutriscan/internal/meal"
	"github.com/vbonduro/nutriscan/internal/photostore"
)

var (
	// ErrNoAnalysis is returned when an item operation needs a current result.
	ErrNoAnalysis = errors.New("no analysis result")
	// ErrNoInput is returned by Analyze when no image is pending.
	ErrNoInput = errors.New("no image to analyze")
	// ErrStaleAnalysis is returned when the input changed while the estimator
	// was working. The late answer is discarded.
	ErrStaleAnalysis = errors.New("input changed during analysis")
)

// photoPrefix groups meal photos in the photo store.
const photoPrefix = "meal"

// CaptureState is a read-only view of the capture workbench.
type CaptureState struct {
	HasImage    bool                   `json:"hasImage"`
	ImageMIME   string                 `json:"imageMime,omitempty"`
	ImageBytes  int                    `json:"imageBytes,omitempty"`
	Description string                 `json:"description,omitempty"`
	Result      *domain.AnalysisResult `json:"result,omitempty"`
	Recipe      *domain.Recipe         `json:"recipe,omitempty"`
}

// Capture holds the meal being composed: a pending photo or description, the
// reconciled analysis result and an optional recipe suggestion. There is one
// workbench per process.
type Capture struct {
	estimator estimator.Estimator
	catalog   *Catalog
	diary     *Diary
	photos    photostore.PhotoStore
	logger    *slog.Logger

	mu          sync.Mutex
	generation  uint64
	image       []byte
	imageMIME   string
	description string
	result      *domain.AnalysisResult
	recipe      *domain.Recipe
}

func NewCapture(
	est estimator.Estimator,
	catalog *Catalog,
	diary *Diary,
	photos photostore.PhotoStore,
	logger *slog.Logger,
) *Capture {
	return &Capture{
		estimator: est,
		catalog:   catalog,
		diary:     diary,
		photos:    photos,
		logger:    logger,
	}
}

// SetImage makes data the pending photo and discards the current result.
func (c *Capture) SetImage(data []byte, mimeType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.image = append([]byte(nil), data...)
	c.imageMIME = mimeType
	c.description = ""
	c.result = nil
	c.recipe = nil
}

// SetDescription makes text the pending meal description and discards the
// current result.
func (c *Capture) SetDescription(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDescriptionLocked(text)
}

func (c *Capture) setDescriptionLocked(text string) {
	c.generation++
	c.image = nil
	c.imageMIME = ""
	c.description = text
	c.result = nil
	c.recipe = nil
}

// Analyze estimates the pending photo. On failure the photo is kept so the
// caller can retry.
func (c *Capture) Analyze(ctx context.Context) (*domain.AnalysisResult, error) {
	c.mu.Lock()
	gen := c.generation
	image, mimeType := c.image, c.imageMIME
	c.mu.Unlock()

	if len(image) == 0 {
		return nil, ErrNoInput
	}

	c.logger.Info("analyze image started", "mime_type", mimeType, "bytes", len(image))
	res, err := c.estimator.EstimateFromImage(ctx, bytes.NewReader(image), mimeType)
	if err != nil {
		return nil, err
	}
	return c.accept(gen, res)
}

// AnalyzeText estimates a meal description. Only a successful estimate
// replaces the pending input and the current result; on failure the
// workbench is left as it was.
func (c *Capture) AnalyzeText(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	c.logger.Info("analyze text started", "chars", len(text))
	res, err := c.estimator.EstimateFromText(ctx, text)
	if err != nil {
		return nil, err
	}
	return c.acceptWith(gen, res, func() { c.setDescriptionLocked(text) })
}

func (c *Capture) accept(gen uint64, res *domain.AnalysisResult) (*domain.AnalysisResult, error) {
	return c.acceptWith(gen, res, nil)
}

// acceptWith installs res if the input did not change since gen was read.
// replaceInput, when set, runs under the lock just before.
func (c *Capture) acceptWith(gen uint64, res *domain.AnalysisResult, replaceInput func()) (*domain.AnalysisResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Warn("discarding stale analysis", "items", len(res.Items))
		return nil, ErrStaleAnalysis
	}
	if replaceInput != nil {
		replaceInput()
	}
	out := meal.FromEstimate(res)
	c.result = &out
	c.recipe = nil
	return cloneResult(c.result), nil
}

// PickProduct adds a catalog product to the meal.
func (c *Capture) PickProduct(ctx context.Context, name string) (*domain.AnalysisResult, error) {
	p, err := c.catalog.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := meal.AddProduct(c.result, *p)
	c.result = &out
	return cloneResult(c.result), nil
}

func (c *Capture) EditItem(index int, field, value string) (*domain.AnalysisResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, ErrNoAnalysis
	}
	out, err := meal.EditItem(*c.result, index, field, value)
	if err != nil {
		return nil, err
	}
	c.result = &out
	return cloneResult(c.result), nil
}

func (c *Capture) RemoveItem(index int) (*domain.AnalysisResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, ErrNoAnalysis
	}
	out, err := meal.RemoveItem(*c.result, index)
	if err != nil {
		return nil, err
	}
	c.result = &out
	return cloneResult(c.result), nil
}

// SuggestRecipe asks for a recipe built from the current items. The recipe
// title becomes the saved entry's recipe.
func (c *Capture) SuggestRecipe(ctx context.Context) (*domain.Recipe, error) {
	c.mu.Lock()
	gen := c.generation
	var names []string
	if c.result != nil {
		for _, it := range c.result.Items {
			if n := strings.TrimSpace(it.Name); n != "" {
				names = append(names, n)
			}
		}
	}
	c.mu.Unlock()

	if len(names) == 0 {
		return nil, ErrNoAnalysis
	}

	recipe, err := c.estimator.SuggestRecipe(ctx, names)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil, ErrStaleAnalysis
	}
	c.recipe = recipe
	r := *recipe
	return &r, nil
}

// Save finalizes the meal into a diary entry dated date and adds it to the
// diary. A pending photo is stored first and removed again if the entry
// cannot be saved. On success the workbench is reset.
func (c *Capture) Save(ctx context.Context, date string) (*domain.DiaryEntry, error) {
	c.mu.Lock()
	gen := c.generation
	var res domain.AnalysisResult
	if c.result != nil {
		res = c.result.Clone()
	}
	image, mimeType := c.image, c.imageMIME
	var recipeTitle string
	if c.recipe != nil {
		recipeTitle = c.recipe.Title
	}
	c.mu.Unlock()

	if len(res.Items) == 0 {
		return nil, domain.ErrEmptyMeal
	}

	var imageRef string
	if len(image) > 0 {
		key, err := c.photos.Save(ctx, photoPrefix, mimeType, bytes.NewReader(image))
		if err != nil {
			return nil, fmt.Errorf("failed to save photo: %w", err)
		}
		imageRef = key
	}

	entry := meal.Finalize(res, date, imageRef, recipeTitle)
	if err := c.diary.Add(ctx, entry); err != nil {
		if imageRef != "" {
			if derr := c.photos.Delete(context.WithoutCancel(ctx), imageRef); derr != nil {
				c.logger.Error("failed to remove photo of unsaved entry", "storage_key", imageRef, "error", derr)
			}
		}
		return nil, err
	}

	c.mu.Lock()
	if gen == c.generation {
		c.resetLocked()
	}
	c.mu.Unlock()

	return &entry, nil
}

// Reset clears the workbench.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Capture) resetLocked() {
	c.generation++
	c.image = nil
	c.imageMIME = ""
	c.description = ""
	c.result = nil
	c.recipe = nil
}

func (c *Capture) Snapshot() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := CaptureState{
		HasImage:    len(c.image) > 0,
		ImageMIME:   c.imageMIME,
		ImageBytes:  len(c.image),
		Description: c.description,
		Result:      cloneResult(c.result),
	}
	if c.recipe != nil {
		r := *c.recipe
		st.Recipe = &r
	}
	return st
}

func cloneResult(r *domain.AnalysisResult) *domain.AnalysisResult {
	if r == nil {
		return nil
	}
	out := r.Clone()
	return &out
}

package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/stats"
)

type diaryResponse struct {
	Days    []domain.DayGroup `json:"days"`
	Loading bool              `json:"loading"`
}

type entriesResponse struct {
	Entries []domain.DiaryEntry `json:"entries"`
	Loading bool                `json:"loading"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.Summary(s.today()))
}

func (s *Server) handleDiary(w http.ResponseWriter, _ *http.Request) {
	days := stats.GroupByDay(s.diary.Entries())
	if days == nil {
		days = []domain.DayGroup{}
	}
	s.writeJSON(w, http.StatusOK, diaryResponse{Days: days, Loading: s.diary.Loading()})
}

func (s *Server) handleListEntries(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, entriesResponse{Entries: s.diary.Entries(), Loading: s.diary.Loading()})
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch domain.EntryPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validatePatch(patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.diary.Update(r.Context(), id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, ok := s.diary.Get(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("entry %q: %w", id, domain.ErrNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.diary.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntryPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := s.diary.Get(id)
	if !ok || entry.ImageRef == "" {
		s.writeError(w, r, fmt.Errorf("photo of entry %q: %w", id, domain.ErrNotFound))
		return
	}

	reader, mimeType, err := s.photos.Get(r.Context(), entry.ImageRef)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "entry_id", id, "error", err)
	}
}

// validatePatch rejects a malformed date and negative nutrition values.
func validatePatch(p domain.EntryPatch) error {
	if p.Date != nil {
		if _, err := time.Parse(domain.DateLayout, *p.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest)
		}
	}
	for name, v := range map[string]*float64{
		"totalCalories": p.TotalCalories,
		"totalProtein":  p.TotalProtein,
		"totalCarbs":    p.TotalCarbs,
		"totalFats":     p.TotalFats,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", errBadRequest, name)
		}
	}
	if p.Items != nil {
		for i, it := range *p.Items {
			if it.Calories < 0 || it.Protein < 0 || it.Carbs < 0 || it.Fats < 0 {
				return fmt.Errorf("%w: item %d has negative values", errBadRequest, i)
			}
		}
	}
	return nil
}

package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/stats"
)

type textRequest struct {
	Text string `json:"text"`
}

type productRequest struct {
	Name string `json:"name"`
}

type editItemRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type saveRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleGetCapture(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.capture.Snapshot())
}

func (s *Server) handleResetCapture(w http.ResponseWriter, _ *http.Request) {
	s.capture.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// handleCaptureImage accepts a multipart form with an "image" file and makes
// it the pending photo. The format is sniffed, the client's Content-Type is
// ignored.
func (s *Server) handleCaptureImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: failed to parse form", errBadRequest))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: image file required", errBadRequest))
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if len(imageData) > maxPhotoSize {
		s.writeError(w, r, fmt.Errorf("%w: image too large", errBadRequest))
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: unsupported image format", errBadRequest))
		return
	}

	s.capture.SetImage(imageData, mimeType)
	s.writeJSON(w, http.StatusOK, s.capture.Snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res, err := s.capture.Analyze(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.writeError(w, r, fmt.Errorf("%w: text is required", errBadRequest))
		return
	}

	res, err := s.capture.AnalyzeText(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePickProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.capture.PickProduct(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req editItemRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.capture.EditItem(index, req.Field, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.capture.RemoveItem(index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuggestRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.capture.SuggestRecipe(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recipe)
}

// handleSaveMeal stores the meal under the requested date, or today when the
// body is empty or names no date.
func (s *Server) handleSaveMeal(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	date := stats.FormatDate(s.today())
	if req.Date != "" {
		if _, err := time.Parse(domain.DateLayout, req.Date); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest))
			return
		}
		date = req.Date
	}

	entry, err := s.capture.Save(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

// parseIndex extracts the {index} path variable.
func parseIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid item index %q", errBadRequest, r.PathValue("index"))
	}
	return index, nil
}

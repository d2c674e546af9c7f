package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vbonduro/nutriscan/internal/domain"
)

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	s.writeJSON(w, http.StatusOK, productsResponse{Products: products})
}

func (s *Server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := decodeJSON(w, r, &p, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.Save(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Remove(r.Context(), r.PathValue("name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEstimateProduct returns suggested nutrition for a new product without
// adding it to the catalog.
func (s *Server) handleEstimateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}

	p, err := s.catalog.Estimate(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

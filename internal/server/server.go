package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"smoothies/internal/canon"
	"smoothies/internal/catalog"
	"smoothies/internal/metrics"
	"smoothies/internal/orders"
)

type Server struct {
	catalog *catalog.Service
	canon   *canon.Canonicalizer
	orders  *orders.Service
	metrics *metrics.Registry
}

func New(cat *catalog.Service, c *canon.Canonicalizer, o *orders.Service, m *metrics.Registry) *Server {
	return &Server{catalog: cat, canon: c, orders: o, metrics: m}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/fruits", s.handleFruits)
	mux.HandleFunc("POST /api/canonical", s.handleCanonical)
	mux.HandleFunc("POST /api/canonical/match", s.handleMatch)
	mux.HandleFunc("GET /api/nutrition", s.handleNutrition)
	mux.HandleFunc("POST /api/orders", s.handleSubmitOrder)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

type variantView struct {
	Rule      canon.Rule     `json:"rule"`
	Canonical string         `json:"canonical"`
	Metadata  canon.Metadata `json:"metadata"`
	Error     string         `json:"error,omitempty"`
}

func toView(v canon.Variant) variantView {
	out := variantView{Rule: v.Rule, Canonical: v.Canonical, Metadata: v.Metadata}
	if v.Err != nil {
		out.Error = v.Err.Error()
	}
	return out
}

type canonicalRequest struct {
	Labels []string    `json:"labels"`
	Rule   *canon.Rule `json:"rule,omitempty"`
}

type matchRequest struct {
	Labels     []string `json:"labels"`
	TargetHash *int64   `json:"targetHash"`
}

func (s *Server) handleFruits(w http.ResponseWriter, _ *http.Request) {
	opts, err := s.catalog.Options()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	type fruitView struct {
		Label      string `json:"label"`
		SearchTerm string `json:"searchTerm"`
	}
	out := make([]fruitView, 0, len(opts))
	for _, o := range opts {
		out = append(out, fruitView{Label: o.Label, SearchTerm: o.ResolvedSearchTerm()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCanonical(w http.ResponseWriter, r *http.Request) {
	var req canonicalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.orders.ValidateSelection(req.Labels); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Rule != nil {
		v, err := s.canon.Canonicalize(r.Context(), req.Labels, *req.Rule)
		if err != nil && !errors.Is(err, canon.ErrMetadataUnavailable) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, toView(v))
		return
	}

	variants, err := s.canon.Variants(r.Context(), req.Labels)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out := make([]variantView, len(variants))
	for i, v := range variants {
		out[i] = toView(v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.TargetHash == nil {
		writeError(w, http.StatusBadRequest, errors.New("targetHash is required"))
		return
	}
	if err := s.orders.ValidateSelection(req.Labels); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := s.canon.FindMatchingVariant(r.Context(), req.Labels, *req.TargetHash)
	switch {
	case err == nil:
		s.metrics.ObserveVariantSearch("match")
		writeJSON(w, http.StatusOK, toView(v))
	case canon.IsNotFound(err):
		s.metrics.ObserveVariantSearch("not_found")
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, canon.ErrMetadataUnavailable):
		s.metrics.ObserveVariantSearch("error")
		s.metrics.ObserveMetadataUnavailable()
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func (s *Server) handleNutrition(w http.ResponseWriter, r *http.Request) {
	labels := r.URL.Query()["label"]
	if err := s.orders.ValidateSelection(labels); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := s.orders.Lookup(r.Context(), labels)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.OrderRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.orders.Submit(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case errors.Is(err, canon.ErrEmptySelection), errors.Is(err, orders.ErrTooManyLabels),
		errors.Is(err, orders.ErrBlankLabel), errors.Is(err, canon.ErrUnknownRule):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, orders.ErrHashRequired):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		fmt.Printf("order submit failed err=%v\n", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Alen-Aazim/Yesgee/pkg/kit"
)

const maxReplaceBody = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/api/products", s.list)
	r.Post("/api/products", s.replaceAll)
	r.Get("/api/cart", s.cart)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.LoadAll(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "failed to read products", nil)
		return
	}
	if products == nil {
		products = []Product{}
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

// replaceAll is the bulk "save all products" path: the submitted list
// replaces the whole collection verbatim, duplicate ids and all.
func (s *Server) replaceAll(w http.ResponseWriter, r *http.Request) {
	products, err := decodeReplaceRequest(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	if err := s.Store.ReplaceAll(r.Context(), products); err != nil {
		if s.Log != nil {
			s.Log.Error("replace products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "failed to save products", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// cart is kept for API compatibility; carts live client-side.
func (s *Server) cart(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, []Product{})
}

func decodeReplaceRequest(w http.ResponseWriter, r *http.Request) ([]Product, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReplaceBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var products []Product
	if err := dec.Decode(&products); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("trailing data after products array")
	}
	return products, nil
}

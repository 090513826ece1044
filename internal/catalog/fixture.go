package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/rocketcart/pkg/logger"
)

// Fixture is the JSON document served by the development catalog:
//
//	{"products": [{"id":1,"title":"...","price":179.9,"image":"..."}], "stock": [{"id":1,"amount":3}]}
type Fixture struct {
	Products []Product `json:"products"`
	Stock    []Stock   `json:"stock"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	seen := make(map[int64]struct{}, len(f.Products))
	for _, p := range f.Products {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d in fixture", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	for _, s := range f.Stock {
		if s.Amount < 0 {
			return fmt.Errorf("negative stock for product %d", s.ID)
		}
	}
	return nil
}

type fixtureServer struct {
	products map[int64]Product
	order    []int64
	stock    map[int64]Stock
}

// NewFixtureHandler serves the fixture with the same routes as the remote service.
func NewFixtureHandler(f *Fixture, logg *logger.Logger) http.Handler {
	s := &fixtureServer{
		products: make(map[int64]Product, len(f.Products)),
		stock:    make(map[int64]Stock, len(f.Stock)),
	}
	for _, p := range f.Products {
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	for _, st := range f.Stock {
		s.stock[st.ID] = st
	}
	if logg != nil {
		logg.Info(logg.WithFields(context.Background(), map[string]any{
			"products": len(s.products),
			"stock":    len(s.stock),
		}), "catalog.fixture.loaded")
	}

	r := chi.NewRouter()
	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/stock/{id}", s.getStock)
	return r
}

func (s *fixtureServer) listProducts(w http.ResponseWriter, r *http.Request) {
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	writeFixtureJSON(w, http.StatusOK, out)
}

func (s *fixtureServer) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFixtureID(w, r)
	if !ok {
		return
	}
	p, found := s.products[id]
	if !found {
		writeFixtureJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	writeFixtureJSON(w, http.StatusOK, p)
}

func (s *fixtureServer) getStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFixtureID(w, r)
	if !ok {
		return
	}
	st, found := s.stock[id]
	if !found {
		writeFixtureJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	writeFixtureJSON(w, http.StatusOK, st)
}

func parseFixtureID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFixtureJSON(w, http.StatusNotFound, map[string]string{})
		return 0, false
	}
	return id, true
}

func writeFixtureJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

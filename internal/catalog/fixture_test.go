package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"products": [{"id": 1, "title": "Shoe", "price": 179.9, "image": "a.jpg"}],
		"stock": [{"id": 1, "amount": 3}]
	}`), 0o600))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, f.Products, 1)
	assert.Equal(t, "179.9", f.Products[0].Price.String())
	assert.Equal(t, 3, f.Stock[0].Amount)
}

func TestLoadFixtureRejectsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()

	dup := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`{"products":[{"id":1},{"id":1}]}`), 0o600))
	_, err := LoadFixture(dup)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.json")
	require.NoError(t, os.WriteFile(neg, []byte(`{"stock":[{"id":1,"amount":-2}]}`), 0o600))
	_, err = LoadFixture(neg)
	assert.Error(t, err)

	_, err = LoadFixture(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFixtureHandlerRoutes(t *testing.T) {
	h := NewFixtureHandler(testFixture(), nil)

	tests := []struct {
		path   string
		status int
	}{
		{path: "/products", status: http.StatusOK},
		{path: "/products/1", status: http.StatusOK},
		{path: "/products/42", status: http.StatusNotFound},
		{path: "/products/abc", status: http.StatusNotFound},
		{path: "/stock/2", status: http.StatusOK},
		{path: "/stock/42", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.status, rec.Code, tt.path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	var list []Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
}

func TestFixtureHandlerServesConcurrentReads(t *testing.T) {
	h := NewFixtureHandler(testFixture(), nil)

	var wg sync.WaitGroup
	codes := make([]int, 32)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock/1", nil))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	assert.Contains(t, rec.Body.String(), `"price":179.9`)
}

package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceEncodesAsNumber(t *testing.T) {
	product := Product{ID: 1, Title: "Shoe", Price: NewPrice(decimal.RequireFromString("179.9")), Image: "a.jpg"}

	raw, err := json.Marshal(product)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Shoe","price":179.9,"image":"a.jpg"}`, string(raw))

	var decoded Product
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Price.Equal(decimal.RequireFromString("179.9")))
}

func TestPriceAcceptsQuotedStrings(t *testing.T) {
	var p Price
	require.NoError(t, json.Unmarshal([]byte(`"139.90"`), &p))
	assert.Equal(t, "139.9", p.String())

	require.Error(t, json.Unmarshal([]byte(`"cheap"`), &p))
}

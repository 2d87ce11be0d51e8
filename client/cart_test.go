package client

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id string, price string, qty int) CartLine {
	return CartLine{ItemID: id, Name: id, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestAddToCartIncrementsExisting(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 1))
	m.AddToCart(line("shawarma", "8.50", 2))

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 3, m.Count())
}

func TestAddToCartDefaultsQuantity(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("falafel", "4.00", 0))
	require.Len(t, m.Lines(), 1)
	assert.Equal(t, 1, m.Lines()[0].Quantity)
}

func TestUpdateQuantityDelta(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 2))

	m.UpdateQuantity("shawarma", 3)
	assert.Equal(t, 5, m.Lines()[0].Quantity)

	m.UpdateQuantity("shawarma", -4)
	assert.Equal(t, 1, m.Lines()[0].Quantity)
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 2))

	m.UpdateQuantity("shawarma", -2)
	assert.Empty(t, m.Lines())

	// going below zero behaves the same
	m.AddToCart(line("falafel", "4.00", 1))
	m.UpdateQuantity("falafel", -5)
	assert.Empty(t, m.Lines())
}

func TestUpdateQuantityUnknownItemIsNoop(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 1))
	m.UpdateQuantity("nope", 2)
	require.Len(t, m.Lines(), 1)
	assert.Equal(t, 1, m.Lines()[0].Quantity)
}

func TestRemoveAndClear(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 3))
	m.AddToCart(line("falafel", "4.00", 1))

	m.RemoveFromCart("shawarma")
	require.Len(t, m.Lines(), 1)
	assert.Equal(t, "falafel", m.Lines()[0].ItemID)

	m.Clear()
	assert.Empty(t, m.Lines())
	assert.Equal(t, 0, m.Count())
	assert.True(t, m.Total().IsZero())
}

func TestTotal(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 2))
	m.AddToCart(line("falafel", "4.25", 3))

	assert.Equal(t, "29.75", m.Total().StringFixed(2))
	assert.Equal(t, 5, m.Count())
}

func TestMergeRemoteSumsQuantities(t *testing.T) {
	m := NewCartManager(nil)
	m.AddToCart(line("shawarma", "8.50", 2))
	m.AddToCart(line("cola", "2.00", 1))

	m.MergeRemote([]CartLine{
		line("shawarma", "9.00", 1), // price changed server-side
		line("hummus", "5.50", 2),
	})

	lines := m.Lines()
	require.Len(t, lines, 3)

	byID := map[string]CartLine{}
	for _, l := range lines {
		byID[l.ItemID] = l
	}
	assert.Equal(t, 3, byID["shawarma"].Quantity)
	assert.Equal(t, "9.00", byID["shawarma"].Price.StringFixed(2))
	assert.Equal(t, 1, byID["cola"].Quantity)
	assert.Equal(t, 2, byID["hummus"].Quantity)
}

func TestFileCartStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")

	m := NewCartManager(NewFileCartStore(path))
	m.AddToCart(line("shawarma", "8.50", 2))
	m.AddToCart(line("falafel", "4.00", 1))

	reloaded := NewCartManager(NewFileCartStore(path))
	lines := reloaded.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 3, reloaded.Count())
	assert.Equal(t, "21.00", reloaded.Total().StringFixed(2))
}

func TestFileCartStoreMissingFileIsEmptyCart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-written.json")
	m := NewCartManager(NewFileCartStore(path))
	assert.Empty(t, m.Lines())
}

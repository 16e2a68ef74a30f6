package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/shared"
)

func TestNewItem(t *testing.T) {
	t.Run("normalizes sku", func(t *testing.T) {
		it, err := NewItem("it-chainsaw", "Chainsaw", " saw-01 ", "tools")
		require.NoError(t, err)
		assert.Equal(t, "SAW-01", it.SKU)
	})

	t.Run("fails with empty id", func(t *testing.T) {
		_, err := NewItem(" ", "Chainsaw", "SAW-01", "tools")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Item ID cannot be empty")
	})

	t.Run("fails with empty sku", func(t *testing.T) {
		_, err := NewItem("it-chainsaw", "Chainsaw", "", "tools")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SKU")
	})
}

func TestCatalog(t *testing.T) {
	c, err := NewCatalog([]Item{
		{ID: "it-rope", Name: "Rope", SKU: "ROPE-10"},
		{ID: "it-chainsaw", Name: "Chainsaw", SKU: "SAW-01"},
	})
	require.NoError(t, err)

	it, ok := c.Get("it-chainsaw")
	assert.True(t, ok)
	assert.Equal(t, "Chainsaw", it.Name)

	bySKU, ok := c.BySKU("ROPE-10")
	assert.True(t, ok)
	assert.Equal(t, "it-rope", bySKU.ID)

	_, err = c.Require("it-missing")
	assert.ErrorIs(t, err, shared.ErrUnknownItem)

	assert.Equal(t, []string{"it-chainsaw", "it-rope"}, c.IDs())
	assert.Len(t, c.All(), 2)

	t.Run("rejects duplicate sku", func(t *testing.T) {
		_, err := NewCatalog([]Item{
			{ID: "a", Name: "A", SKU: "X"},
			{ID: "b", Name: "B", SKU: "X"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SKU")
	})
}

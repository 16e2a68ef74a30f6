package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_QuantityAt(t *testing.T) {
	l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 50}})

	assert.Equal(t, 50, l.QuantityAt("loc-central", "it-chainsaw"))
	assert.Equal(t, 0, l.QuantityAt("loc-nampula", "it-chainsaw"))
	assert.Equal(t, 0, l.QuantityAt("loc-central", "it-rope"))
}

func TestLedger_Adjust(t *testing.T) {
	t.Run("creates record lazily on positive delta", func(t *testing.T) {
		l := NewLedger(nil)
		_, ok := l.Get("loc-nampula", "it-chainsaw")
		require.False(t, ok)

		rec := l.Adjust("loc-nampula", "it-chainsaw", 5)
		assert.Equal(t, 5, rec.Quantity)
		assert.False(t, rec.UpdatedAt.IsZero())

		stored, ok := l.Get("loc-nampula", "it-chainsaw")
		require.True(t, ok)
		assert.Equal(t, 5, stored.Quantity)
	})

	t.Run("adds to existing record", func(t *testing.T) {
		l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 50}})
		rec := l.Adjust("loc-central", "it-chainsaw", -5)
		assert.Equal(t, 45, rec.Quantity)
		assert.Equal(t, 45, l.QuantityAt("loc-central", "it-chainsaw"))
	})

	t.Run("does not clamp", func(t *testing.T) {
		l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 3}})
		rec := l.Adjust("loc-central", "it-chainsaw", -5)
		assert.Equal(t, -2, rec.Quantity)
	})

	t.Run("zero delta on missing pair stores nothing", func(t *testing.T) {
		l := NewLedger(nil)
		l.Adjust("loc-central", "it-chainsaw", 0)
		assert.Empty(t, l.All())
	})

	t.Run("negative delta on missing pair stores nothing", func(t *testing.T) {
		l := NewLedger(nil)
		rec := l.Adjust("loc-x", "it-chainsaw", -3)
		assert.Equal(t, 0, rec.Quantity)
		assert.Equal(t, 0, l.QuantityAt("loc-x", "it-chainsaw"))
		_, ok := l.Get("loc-x", "it-chainsaw")
		assert.False(t, ok)
	})

	t.Run("record is driven to zero, never deleted", func(t *testing.T) {
		l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 5}})
		l.Adjust("loc-central", "it-chainsaw", -5)
		rec, ok := l.Get("loc-central", "it-chainsaw")
		require.True(t, ok)
		assert.Equal(t, 0, rec.Quantity)
	})
}

func TestLedger_PreviewDoesNotMutate(t *testing.T) {
	l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 50}})
	preview := l.Preview([]Delta{
		{LocationID: "loc-central", ItemID: "it-chainsaw", Amount: -5},
		{LocationID: "loc-central", ItemID: "it-chainsaw", Amount: -5},
		{LocationID: "loc-nampula", ItemID: "it-chainsaw", Amount: 5},
	})

	require.Len(t, preview, 3)
	assert.Equal(t, 45, preview[0].Quantity)
	assert.Equal(t, 40, preview[1].Quantity)
	assert.Equal(t, 5, preview[2].Quantity)
	assert.Equal(t, 50, l.QuantityAt("loc-central", "it-chainsaw"))
	assert.Equal(t, 0, l.QuantityAt("loc-nampula", "it-chainsaw"))
}

func TestLedger_AtLocations(t *testing.T) {
	l := NewLedger([]Record{
		{ItemID: "it-rope", LocationID: "loc-nampula", Quantity: 2},
		{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 50},
		{ItemID: "it-chainsaw", LocationID: "loc-nampula", Quantity: 1},
	})

	recs := l.AtLocations(map[string]struct{}{"loc-nampula": {}})
	require.Len(t, recs, 2)
	assert.Equal(t, "it-chainsaw", recs[0].ItemID)
	assert.Equal(t, "it-rope", recs[1].ItemID)
	assert.Len(t, l.All(), 3)
}

func TestLedger_Apply(t *testing.T) {
	l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 50}})
	out := l.Apply([]Delta{{LocationID: "loc-central", ItemID: "it-chainsaw", Amount: -10}})
	require.Len(t, out, 1)
	assert.Equal(t, 40, out[0].Quantity)
	assert.Equal(t, 40, l.QuantityAt("loc-central", "it-chainsaw"))
}

func TestLedger_ApplyAndPreviewSkipUncreatedPairs(t *testing.T) {
	l := NewLedger([]Record{{ItemID: "it-chainsaw", LocationID: "loc-central", Quantity: 50}})
	deltas := []Delta{
		{LocationID: "loc-x", ItemID: "it-chainsaw", Amount: -3},
		{LocationID: "loc-central", ItemID: "it-chainsaw", Amount: -5},
	}

	preview := l.Preview(deltas)
	require.Len(t, preview, 1)
	assert.Equal(t, "loc-central", preview[0].LocationID)
	assert.Equal(t, 45, preview[0].Quantity)

	out := l.Apply(deltas)
	require.Len(t, out, 1)
	assert.Equal(t, preview[0].Quantity, out[0].Quantity)
	assert.Len(t, l.All(), 1)
}

package requisition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/shared"
)

func TestNew(t *testing.T) {
	t.Run("opens pending requisition with create log", func(t *testing.T) {
		r := newPending(t, "loc-central", "loc-nampula", 5)

		assert.NotEmpty(t, r.ID)
		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, OriginLocal, r.Origin)
		assert.Equal(t, 1, r.Version)
		require.Len(t, r.Logs, 1)
		assert.Equal(t, LogActionCreate, r.Logs[0].Action)
		assert.Equal(t, "u-field-a", r.Logs[0].ActorID)
		require.Len(t, r.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCreated, r.GetDomainEvents()[0].EventType())
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		_, err := New(NewParams{RequesterID: "u", SourceLocationID: "a", TargetLocationID: "b", ItemID: "i", Quantity: 0}, fixedTime)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("fails without item", func(t *testing.T) {
		_, err := New(NewParams{RequesterID: "u", SourceLocationID: "a", TargetLocationID: "b", Quantity: 1}, fixedTime)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Item ID")
	})
}

func TestImport(t *testing.T) {
	created := fixedTime.Add(-time.Hour)
	p := NewParams{RequesterID: "u-ext", SourceLocationID: "loc-nampula", TargetLocationID: "loc-field-a", ItemID: "it-rope", Quantity: 3}

	t.Run("keeps external id and creation time", func(t *testing.T) {
		r, err := Import("ext-1", p, StatusPending, created, fixedTime)
		require.NoError(t, err)
		assert.Equal(t, "ext-1", r.ID)
		assert.Equal(t, created, r.CreatedAt)
		assert.Equal(t, OriginExternal, r.Origin)
		require.Len(t, r.Logs, 1)
		assert.Equal(t, EventTypeSynced, r.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects non-pending records", func(t *testing.T) {
		_, err := Import("ext-2", p, StatusInTransit, created, fixedTime)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only PENDING")
	})

	t.Run("rejects empty id", func(t *testing.T) {
		_, err := Import("", p, StatusPending, created, fixedTime)
		require.Error(t, err)
	})
}

func TestClone_IsIndependent(t *testing.T) {
	r := newPending(t, "loc-central", "loc-nampula", 5)
	c := r.Clone()

	c.Status = StatusApproved
	c.Logs = append(c.Logs, LogEntry{Message: "extra"})

	assert.Equal(t, StatusPending, r.Status)
	assert.Len(t, r.Logs, 1)
	assert.Empty(t, c.GetDomainEvents())
	assert.Len(t, r.GetDomainEvents(), 1)
}

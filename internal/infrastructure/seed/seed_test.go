package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/infrastructure/config"
	"github.com/opsboard/backend/internal/infrastructure/persistence"
)

const sampleYAML = `
default_root: loc-central
locations:
  - {id: loc-central, name: Central Warehouse, type: CENTRAL}
  - {id: loc-nampula, name: Nampula Branch, type: BRANCH, parent: loc-central}
  - {id: loc-field-a, name: Field Site A, type: FIELD, parent: loc-nampula}
items:
  - {id: it-chainsaw, name: Chainsaw, sku: CHS-01, category: tools}
inventory:
  - {location: loc-central, item: it-chainsaw, quantity: 50}
users:
  - id: u-field-a
    username: field.a
    display_name: Field Worker A
    role: FIELD_WORKER
    location: loc-field-a
    password: field-pass-1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupRepos(t *testing.T) Repositories {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "seed_test.db"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return Repositories{
		Locations: persistence.NewGormLocationRepository(db.DB),
		Items:     persistence.NewGormItemRepository(db.DB),
		Inventory: persistence.NewGormInventoryRepository(db.DB),
		Users:     persistence.NewGormUserRepository(db.DB),
	}
}

func TestLoadFile(t *testing.T) {
	f, err := LoadFile(writeFile(t, "seed.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "loc-central", f.DefaultRoot)
	require.Len(t, f.Locations, 3)
	assert.Equal(t, "loc-nampula", f.Locations[2].Parent)
	require.Len(t, f.Inventory, 1)
	assert.Equal(t, 50, f.Inventory[0].Quantity)
	require.Len(t, f.Users, 1)
	assert.Equal(t, "Field Worker A", f.Users[0].DisplayName)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	f, err := LoadFile(writeFile(t, "seed.yaml", sampleYAML))
	require.NoError(t, err)

	b, err := f.Build("", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, b.Graph.Len())
	assert.Equal(t, "loc-central", b.Graph.DefaultRoot())
	assert.Len(t, b.Items, 1)
	assert.Len(t, b.Records, 1)
	require.Len(t, b.Users, 1)
	assert.True(t, b.Users[0].VerifyPassword("field-pass-1"))
}

func TestBuild_Rejects(t *testing.T) {
	base := func() *File {
		return &File{
			Locations: []LocationEntry{{ID: "loc-central", Name: "Central", Type: "CENTRAL"}},
			Items:     []ItemEntry{{ID: "it-a", Name: "A", SKU: "A-1"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(f *File)
		code   string
	}{
		{
			name:   "stock at unknown location",
			mutate: func(f *File) { f.Inventory = []StockEntry{{Location: "loc-x", Item: "it-a", Quantity: 1}} },
			code:   shared.CodeUnknownLocation,
		},
		{
			name:   "stock of unknown item",
			mutate: func(f *File) { f.Inventory = []StockEntry{{Location: "loc-central", Item: "it-x", Quantity: 1}} },
			code:   shared.CodeUnknownItem,
		},
		{
			name:   "negative stock",
			mutate: func(f *File) { f.Inventory = []StockEntry{{Location: "loc-central", Item: "it-a", Quantity: -1}} },
			code:   shared.CodeInvalidInput,
		},
		{
			name: "duplicate stock",
			mutate: func(f *File) {
				f.Inventory = []StockEntry{
					{Location: "loc-central", Item: "it-a", Quantity: 1},
					{Location: "loc-central", Item: "it-a", Quantity: 2},
				}
			},
			code: shared.CodeInvalidInput,
		},
		{
			name: "user at unknown location",
			mutate: func(f *File) {
				f.Users = []UserEntry{{ID: "u1", Username: "admin", Role: "ADMIN", Location: "loc-x", Password: "password1"}}
			},
			code: shared.CodeUnknownLocation,
		},
		{
			name:   "branch without parent",
			mutate: func(f *File) { f.Locations = append(f.Locations, LocationEntry{ID: "loc-b", Name: "B", Type: "BRANCH"}) },
			code:   "INVALID_HIERARCHY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base()
			tt.mutate(f)
			_, err := f.Build("", time.Now())
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.CodeOf(err))
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)

	f, err := LoadFile(writeFile(t, "seed.yaml", sampleYAML))
	require.NoError(t, err)
	b, err := f.Build("", time.Now())
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, b, repos, Options{}, nil))

	locs, err := repos.Locations.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 3)

	records, err := repos.Inventory.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 50, records[0].Quantity)

	u, err := repos.Users.FindByUsername(ctx, "field.a")
	require.NoError(t, err)
	assert.Equal(t, "loc-field-a", u.LocationID)
}

func TestApply_KeepsExistingBalancesUnlessOverwrite(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)

	f, err := LoadFile(writeFile(t, "seed.yaml", sampleYAML))
	require.NoError(t, err)
	b, err := f.Build("", time.Now())
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, b, repos, Options{}, nil))

	moved := b.Records[0]
	moved.Quantity = 12
	require.NoError(t, repos.Inventory.Save(ctx, moved))

	require.NoError(t, Apply(ctx, b, repos, Options{}, nil))
	records, err := repos.Inventory.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 12, records[0].Quantity)

	require.NoError(t, Apply(ctx, b, repos, Options{Overwrite: true}, nil))
	records, err = repos.Inventory.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, records[0].Quantity)
}

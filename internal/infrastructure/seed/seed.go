// Package seed loads the reference data (locations, items, opening stock and
// users) from a YAML file and writes it through the repositories.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// File mirrors the seed YAML layout
type File struct {
	DefaultRoot string          `mapstructure:"default_root"`
	Locations   []LocationEntry `mapstructure:"locations"`
	Items       []ItemEntry     `mapstructure:"items"`
	Inventory   []StockEntry    `mapstructure:"inventory"`
	Users       []UserEntry     `mapstructure:"users"`
}

// LocationEntry is one location in the seed file
type LocationEntry struct {
	ID     string `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Type   string `mapstructure:"type"`
	Parent string `mapstructure:"parent"`
}

// ItemEntry is one catalog item in the seed file
type ItemEntry struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	SKU      string `mapstructure:"sku"`
	Category string `mapstructure:"category"`
}

// StockEntry is an opening balance
type StockEntry struct {
	Location string `mapstructure:"location"`
	Item     string `mapstructure:"item"`
	Quantity int    `mapstructure:"quantity"`
}

// UserEntry is a user with a plain-text initial password
type UserEntry struct {
	ID          string `mapstructure:"id"`
	Username    string `mapstructure:"username"`
	DisplayName string `mapstructure:"display_name"`
	Role        string `mapstructure:"role"`
	Location    string `mapstructure:"location"`
	Password    string `mapstructure:"password"`
}

// LoadFile reads a seed file. The format follows the extension (yaml, json,
// toml).
func LoadFile(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Bundle is validated seed data ready to be stored
type Bundle struct {
	Graph     *location.Graph
	Locations []location.Location
	Items     []catalog.Item
	Records   []inventory.Record
	Users     []*identity.User
}

// Build validates the file: the hierarchy must form a valid graph, stock and
// users must reference known locations and items, and opening quantities
// cannot be negative.
func (f *File) Build(defaultRoot string, now time.Time) (*Bundle, error) {
	if f.DefaultRoot != "" {
		defaultRoot = f.DefaultRoot
	}

	b := &Bundle{}
	for _, e := range f.Locations {
		loc, err := location.NewLocation(e.ID, e.Name, location.LocationType(e.Type), e.Parent)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", e.ID, err)
		}
		b.Locations = append(b.Locations, *loc)
	}
	graph, err := location.NewGraph(b.Locations, defaultRoot)
	if err != nil {
		return nil, err
	}
	b.Graph = graph

	for _, e := range f.Items {
		item, err := catalog.NewItem(e.ID, e.Name, e.SKU, e.Category)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", e.ID, err)
		}
		b.Items = append(b.Items, *item)
	}
	cat, err := catalog.NewCatalog(b.Items)
	if err != nil {
		return nil, err
	}

	seen := make(map[inventory.Key]struct{}, len(f.Inventory))
	for _, e := range f.Inventory {
		if !graph.Contains(e.Location) {
			return nil, shared.NewDomainError(shared.CodeUnknownLocation, "Stock references unknown location "+e.Location)
		}
		if !cat.Contains(e.Item) {
			return nil, shared.NewDomainError(shared.CodeUnknownItem, "Stock references unknown item "+e.Item)
		}
		if e.Quantity < 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Opening stock of %s at %s cannot be negative", e.Item, e.Location))
		}
		key := inventory.Key{LocationID: e.Location, ItemID: e.Item}
		if _, dup := seen[key]; dup {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Duplicate stock entry for %s at %s", e.Item, e.Location))
		}
		seen[key] = struct{}{}
		b.Records = append(b.Records, inventory.Record{ItemID: e.Item, LocationID: e.Location, Quantity: e.Quantity, UpdatedAt: now})
	}

	for _, e := range f.Users {
		if !graph.Contains(e.Location) {
			return nil, shared.NewDomainError(shared.CodeUnknownLocation,
				fmt.Sprintf("User %s references unknown location %s", e.ID, e.Location))
		}
		u, err := identity.NewUser(e.ID, e.Username, e.DisplayName, identity.Role(e.Role), e.Location, e.Password)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", e.ID, err)
		}
		b.Users = append(b.Users, u)
	}
	return b, nil
}

// Repositories are the stores a bundle is written to
type Repositories struct {
	Locations location.LocationRepository
	Items     catalog.ItemRepository
	Inventory inventory.InventoryRepository
	Users     identity.UserRepository
}

// Options controls how Apply treats data that already exists
type Options struct {
	// Overwrite resets stored balances and users to the seed values.
	// Without it only missing balances and users are added.
	Overwrite bool
}

// Apply writes the bundle. Locations and items are always upserted.
func Apply(ctx context.Context, b *Bundle, repos Repositories, opts Options, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := repos.Locations.SaveAll(ctx, b.Locations); err != nil {
		return err
	}
	if err := repos.Items.SaveAll(ctx, b.Items); err != nil {
		return err
	}

	records := b.Records
	if !opts.Overwrite {
		existing, err := repos.Inventory.LoadAll(ctx)
		if err != nil {
			return err
		}
		have := make(map[inventory.Key]struct{}, len(existing))
		for _, r := range existing {
			have[r.Key()] = struct{}{}
		}
		records = make([]inventory.Record, 0, len(b.Records))
		for _, r := range b.Records {
			if _, ok := have[r.Key()]; !ok {
				records = append(records, r)
			}
		}
	}
	if err := repos.Inventory.SaveAll(ctx, records); err != nil {
		return err
	}

	usersWritten := 0
	for _, u := range b.Users {
		if !opts.Overwrite {
			_, err := repos.Users.FindByID(ctx, u.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}
		if err := repos.Users.Save(ctx, u); err != nil {
			return err
		}
		usersWritten++
	}

	logger.Info("Seed applied",
		zap.Int("locations", len(b.Locations)),
		zap.Int("items", len(b.Items)),
		zap.Int("inventory_records", len(records)),
		zap.Int("users", usersWritten),
		zap.Bool("overwrite", opts.Overwrite))
	return nil
}

// iface.go defines the interfaces for dependency injection and testing.
//
// The reconciler and daily scheduler accept StoreInterface instead of
// *Store, and all record access happens through Tx so one logical engine
// operation is one transaction.
package store

import (
	"context"

	"github.com/daviddao/critterdex/pkg/model"
)

// StoreInterface defines the transactional entry points of the store.
// The concrete *Store type implements this interface.
type StoreInterface interface {
	// Update runs fn in a read-write transaction.
	Update(ctx context.Context, fn func(Tx) error) error

	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error

	// Snapshot reads every durable record in one read-only transaction.
	Snapshot(ctx context.Context) (model.Snapshot, error)

	// Close closes the database connection.
	Close() error
}

// Tx is the set of record operations available inside a transaction.
type Tx interface {
	// --- Missions ---

	// ListMissions returns every mission record ordered by id.
	ListMissions() ([]model.MissionRecord, error)

	// GetMission returns one record, or ErrNotFound.
	GetMission(id string) (model.MissionRecord, error)

	// InsertMission adds a new record. Fails if the id exists.
	InsertMission(r model.MissionRecord) error

	// UpdateMission overwrites an existing record.
	UpdateMission(r model.MissionRecord) error

	// DeleteMissionsByKind removes every record of kind and returns the count.
	DeleteMissionsByKind(kind model.Kind) (int64, error)

	// --- Meta ---

	// GetMeta returns the day markers (zero value when never written).
	GetMeta() (model.MetaRecord, error)

	// PutMeta writes the day markers.
	PutMeta(m model.MetaRecord) error

	// --- Tool counts ---

	ListToolCounts() ([]model.ToolCountRecord, error)
	InsertToolCount(r model.ToolCountRecord) error
	UpdateToolCount(r model.ToolCountRecord) error
	DeleteToolCount(tool string) error

	// --- Gallery ---

	ListTallies() ([]model.GalleryTallyRecord, error)
	PutTally(r model.GalleryTallyRecord) error

	// ListUnlocks returns owned maps and gallery images.
	ListUnlocks() ([]model.UnlockRecord, error)

	// InsertUnlock records ownership, reporting false if already owned.
	InsertUnlock(r model.UnlockRecord) (bool, error)

	// --- Wallet ---

	AddBalance(currency model.Currency, amount int) error
	ListBalances() ([]model.WalletRecord, error)
}

// Compile-time checks.
var (
	_ StoreInterface = (*Store)(nil)
	_ Tx             = (*tx)(nil)
)

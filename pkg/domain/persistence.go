package domain

import "context"

// StorageDriver identifies a concrete key-value backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageFS       StorageDriver = "fs"       // one JSON file per key
)

// Snapshot is the full persisted state of the billing store.
type Snapshot struct {
	Patients []Patient `json:"patients"`
	Services []Service `json:"services"`
	Invoices []Invoice `json:"invoices"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Patients: make([]Patient, len(s.Patients)),
		Services: make([]Service, len(s.Services)),
		Invoices: make([]Invoice, len(s.Invoices)),
	}
	copy(out.Patients, s.Patients)
	copy(out.Services, s.Services)
	for i, inv := range s.Invoices {
		out.Invoices[i] = inv.Clone()
	}
	return out
}

// Persister loads and saves the whole billing state.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// KeyValueStore is a durable map of named blobs. Get reports false when the
// key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Driver() StorageDriver
}

// BatchWriter is implemented by key-value stores that can write several keys atomically.
type BatchWriter interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// Package persistence stores the billing state as three independently keyed
// JSON blobs on top of a domain.KeyValueStore.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"physiobill/pkg/domain"
)

// Keys of the persisted blobs. Each holds a JSON array of the entity.
const (
	KeyPatients = "physio_patients"
	KeyServices = "physio_services"
	KeyInvoices = "physio_invoices"
)

var _ domain.Persister = (*Adapter)(nil)

// Adapter implements domain.Persister over a key-value store.
type Adapter struct {
	kv domain.KeyValueStore
}

// NewAdapter wraps kv.
func NewAdapter(kv domain.KeyValueStore) *Adapter {
	return &Adapter{kv: kv}
}

// Driver reports the underlying storage driver.
func (a *Adapter) Driver() domain.StorageDriver { return a.kv.Driver() }

// Load reads the three blobs concurrently. Missing keys load as empty
// collections; read and decode failures are returned and no partial
// snapshot is produced.
func (a *Adapter) Load(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.loadKey(gctx, KeyPatients, &snap.Patients) })
	g.Go(func() error { return a.loadKey(gctx, KeyServices, &snap.Services) })
	g.Go(func() error { return a.loadKey(gctx, KeyInvoices, &snap.Invoices) })
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Patients == nil {
		snap.Patients = []domain.Patient{}
	}
	if snap.Services == nil {
		snap.Services = []domain.Service{}
	}
	if snap.Invoices == nil {
		snap.Invoices = []domain.Invoice{}
	}
	return snap, nil
}

func (a *Adapter) loadKey(ctx context.Context, key string, target any) error {
	raw, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Save writes the three blobs. Stores implementing domain.BatchWriter write
// them atomically; otherwise every key is attempted and failures are joined.
func (a *Adapter) Save(ctx context.Context, snap domain.Snapshot) error {
	values, err := Encode(snap)
	if err != nil {
		return err
	}
	if bw, ok := a.kv.(domain.BatchWriter); ok {
		if err := bw.SetMany(ctx, values); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		return nil
	}
	var errs []error
	for _, key := range []string{KeyPatients, KeyServices, KeyInvoices} {
		if err := a.kv.Set(ctx, key, values[key]); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the underlying store when it holds resources.
func (a *Adapter) Close() error {
	if c, ok := a.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Encode renders the snapshot into its three keyed blobs.
func Encode(snap domain.Snapshot) (map[string][]byte, error) {
	out := make(map[string][]byte, 3)
	for key, v := range map[string]any{
		KeyPatients: nonNil(snap.Patients),
		KeyServices: nonNil(snap.Services),
		KeyInvoices: nonNil(snap.Invoices),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = b
	}
	return out, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

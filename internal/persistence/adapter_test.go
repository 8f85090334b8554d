package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"physiobill/internal/config"
	"physiobill/internal/infra/persistence/memory"
	"physiobill/pkg/domain"
)

// flakyKV is a KeyValueStore without batch support whose reads and writes can fail per key.
type flakyKV struct {
	data      map[string][]byte
	failGet   map[string]bool
	failSet   map[string]bool
	setCalled []string
}

func newFlakyKV() *flakyKV {
	return &flakyKV{data: map[string][]byte{}, failGet: map[string]bool{}, failSet: map[string]bool{}}
}

func (f *flakyKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.failGet[key] {
		return nil, false, errors.New("disk unavailable")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *flakyKV) Set(_ context.Context, key string, value []byte) error {
	f.setCalled = append(f.setCalled, key)
	if f.failSet[key] {
		return errors.New("quota exceeded")
	}
	f.data[key] = value
	return nil
}

func (f *flakyKV) Driver() domain.StorageDriver { return "flaky" }

func sampleSnapshot() domain.Snapshot {
	issued := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	paid := issued.Add(48 * time.Hour)
	return domain.Snapshot{
		Patients: []domain.Patient{{ID: "p1", Name: "John Smith", Phone: "9876500000", Age: 42, Sex: "male", CreatedAt: issued}},
		Services: []domain.Service{{ID: "s1", Name: "Dry Needling", Price: decimal.RequireFromString("750.50")}},
		Invoices: []domain.Invoice{{
			ID:        "i1",
			PatientID: "p1",
			Items:     []domain.InvoiceItem{{ID: "it1", ServiceID: "s1", Quantity: 2, UnitPrice: decimal.RequireFromString("750.50")}},
			Discount:  decimal.NewFromInt(10),
			TaxRate:   decimal.NewFromInt(18),
			Subtotal:  decimal.RequireFromString("1501"),
			Total:     decimal.RequireFromString("1594.062"),
			Status:    domain.InvoiceStatusPaid,
			IssuedOn:  issued,
			PaidOn:    &paid,
		}},
	}
}

func TestSaveLoadRoundTripKeepsTimestamps(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(memory.NewStore())
	want := sampleSnapshot()
	if err := a.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Patients) != 1 || len(got.Services) != 1 || len(got.Invoices) != 1 {
		t.Fatalf("unexpected snapshot sizes %+v", got)
	}
	inv := got.Invoices[0]
	if !inv.IssuedOn.Equal(want.Invoices[0].IssuedOn) {
		t.Fatalf("issuedOn mismatch: %v", inv.IssuedOn)
	}
	if inv.PaidOn == nil || !inv.PaidOn.Equal(*want.Invoices[0].PaidOn) {
		t.Fatalf("paidOn mismatch: %v", inv.PaidOn)
	}
	if !inv.Total.Equal(want.Invoices[0].Total) || !got.Services[0].Price.Equal(want.Services[0].Price) {
		t.Fatalf("money mismatch: %+v", inv)
	}
	if !got.Patients[0].CreatedAt.Equal(want.Patients[0].CreatedAt) || got.Patients[0].Sex != "male" {
		t.Fatalf("patient mismatch: %+v", got.Patients[0])
	}
}

func TestLoadMissingKeysYieldsEmptyCollections(t *testing.T) {
	got, err := NewAdapter(memory.NewStore()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Patients == nil || got.Services == nil || got.Invoices == nil {
		t.Fatalf("expected empty non-nil collections, got %+v", got)
	}
	if len(got.Patients)+len(got.Services)+len(got.Invoices) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestLoadSurfacesReadAndDecodeErrors(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	kv.failGet[KeyServices] = true
	if _, err := NewAdapter(kv).Load(ctx); err == nil || !strings.Contains(err.Error(), KeyServices) {
		t.Fatalf("expected read error naming key, got %v", err)
	}

	kv = newFlakyKV()
	kv.data[KeyInvoices] = []byte(`{not json`)
	if _, err := NewAdapter(kv).Load(ctx); err == nil || !strings.Contains(err.Error(), "decode "+KeyInvoices) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestLoadAcceptsLegacyNumbersAndISODates(t *testing.T) {
	kv := memory.NewStore()
	ctx := context.Background()
	_ = kv.Set(ctx, KeyServices, []byte(`[{"id":"s1","name":"Traction","price":400}]`))
	_ = kv.Set(ctx, KeyPatients, []byte(`[{"id":"p1","name":"Asha","phone":"1","age":30,"createdAt":"2024-01-05T10:00:00.123Z"}]`))
	got, err := NewAdapter(kv).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Services[0].Price.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("unexpected price %s", got.Services[0].Price)
	}
	if got.Patients[0].CreatedAt.Year() != 2024 {
		t.Fatalf("createdAt not parsed: %v", got.Patients[0].CreatedAt)
	}
}

func TestSaveWithoutBatchAttemptsEveryKey(t *testing.T) {
	kv := newFlakyKV()
	kv.failSet[KeyPatients] = true
	err := NewAdapter(kv).Save(context.Background(), sampleSnapshot())
	if err == nil || !strings.Contains(err.Error(), "save "+KeyPatients) {
		t.Fatalf("expected joined save error, got %v", err)
	}
	if len(kv.setCalled) != 3 {
		t.Fatalf("expected every key to be attempted, got %v", kv.setCalled)
	}
	if _, ok := kv.data[KeyInvoices]; !ok {
		t.Fatalf("expected invoices to be written despite patient failure")
	}
}

func TestEncodeWritesEmptyArrays(t *testing.T) {
	values, err := Encode(domain.Snapshot{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, key := range []string{KeyPatients, KeyServices, KeyInvoices} {
		if string(values[key]) != "[]" {
			t.Fatalf("%s: expected [], got %s", key, values[key])
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, config.Storage{Driver: domain.StorageMemory})
	if err != nil || a.Driver() != domain.StorageMemory {
		t.Fatalf("memory: %v %v", a, err)
	}
	fsAdapter, err := Open(ctx, config.Storage{Driver: domain.StorageFS, FSRoot: filepath.Join(t.TempDir(), "data")})
	if err != nil || fsAdapter.Driver() != domain.StorageFS {
		t.Fatalf("fs: %v", err)
	}
	if err := fsAdapter.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("fs save: %v", err)
	}
	if _, err := Open(ctx, config.Storage{Driver: "redis"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "physio.db")
	a, err := Open(ctx, config.Storage{Driver: domain.StorageSQLite, SQLitePath: path})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := a.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, err := Open(ctx, config.Storage{Driver: domain.StorageSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Invoices) != 1 || got.Invoices[0].Items[0].Quantity != 2 {
		t.Fatalf("unexpected reloaded invoices %+v", got.Invoices)
	}
}

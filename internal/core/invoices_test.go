package core

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"physiobill/pkg/domain"
)

func seedInvoice(t *testing.T, f fixture, discount, tax string) (domain.Patient, domain.Service, string) {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.AddPatient(ctx, domain.PatientInput{Name: "Meera", Phone: "900", Age: 52})
	if err != nil {
		t.Fatalf("AddPatient: %v", err)
	}
	svc, err := f.store.AddService(ctx, domain.ServiceInput{Name: "Physio Session", Price: dec("100")})
	if err != nil {
		t.Fatalf("AddService: %v", err)
	}
	id, err := f.store.CreateInvoice(ctx, domain.InvoiceInput{
		PatientID: p.ID,
		Items:     []domain.InvoiceItem{{ServiceID: svc.ID, Quantity: 2, UnitPrice: svc.Price}},
		Discount:  dec(discount),
		TaxRate:   dec(tax),
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return p, svc, id
}

func TestCreateInvoiceComputesTotalsAndDefaults(t *testing.T) {
	f := newFixture()
	_, _, id := seedInvoice(t, f, "10", "18")
	inv, ok := f.store.GetInvoiceByID(id)
	if !ok {
		t.Fatalf("invoice not found")
	}
	if !inv.Subtotal.Equal(dec("200")) || !inv.Total.Equal(dec("212.40")) {
		t.Fatalf("unexpected totals subtotal=%s total=%s", inv.Subtotal, inv.Total)
	}
	if inv.Status != domain.InvoiceStatusUnpaid || inv.PaidOn != nil {
		t.Fatalf("expected unpaid invoice, got %+v", inv)
	}
	if !inv.IssuedOn.Equal(f.clock.Now()) {
		t.Fatalf("issuedOn not stamped: %v", inv.IssuedOn)
	}
	if inv.Items[0].ID == "" {
		t.Fatalf("expected item id to be assigned")
	}
	if got := f.persist.last().Invoices; len(got) != 1 || got[0].ID != id {
		t.Fatalf("invoice not persisted: %+v", got)
	}
}

func TestCreateInvoiceAsPaidStampsPaidOn(t *testing.T) {
	f := newFixture()
	id, err := f.store.CreateInvoice(context.Background(), domain.InvoiceInput{PatientID: "p", Status: domain.InvoiceStatusPaid})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	inv, _ := f.store.GetInvoiceByID(id)
	if inv.PaidOn == nil || !inv.PaidOn.Equal(inv.IssuedOn) {
		t.Fatalf("expected paidOn at issue time, got %v", inv.PaidOn)
	}
}

func TestUnitPriceIsCapturedAtCreation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, svc, id := seedInvoice(t, f, "0", "0")
	if _, err := f.store.UpdateService(ctx, svc.ID, domain.ServicePatch{Price: ptr(dec("999"))}); err != nil {
		t.Fatalf("UpdateService: %v", err)
	}
	inv, _ := f.store.GetInvoiceByID(id)
	if !inv.Items[0].UnitPrice.Equal(dec("100")) || !inv.Total.Equal(dec("200")) {
		t.Fatalf("invoice must not follow service price edits: %+v", inv)
	}
}

func TestUpdateInvoiceRecomputesTotalsWhenPricingChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, svc, id := seedInvoice(t, f, "0", "0")

	updated, err := f.store.UpdateInvoice(ctx, id, domain.InvoicePatch{Discount: ptr(dec("10"))})
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if !updated.Total.Equal(dec("180")) {
		t.Fatalf("expected recomputed total 180, got %s", updated.Total)
	}

	items := []domain.InvoiceItem{{ServiceID: svc.ID, Quantity: 5, UnitPrice: dec("100")}}
	updated, err = f.store.UpdateInvoice(ctx, id, domain.InvoicePatch{Items: &items})
	if err != nil {
		t.Fatalf("UpdateInvoice items: %v", err)
	}
	if !updated.Subtotal.Equal(dec("500")) || !updated.Total.Equal(dec("450")) {
		t.Fatalf("unexpected totals after item change: %s %s", updated.Subtotal, updated.Total)
	}
	if updated.Items[0].ID == "" {
		t.Fatalf("expected new item to receive an id")
	}

	notes := "bring reports"
	before := updated.Total
	updated, err = f.store.UpdateInvoice(ctx, id, domain.InvoicePatch{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateInvoice notes: %v", err)
	}
	if updated.Notes != notes || !updated.Total.Equal(before) {
		t.Fatalf("notes change must keep totals: %+v", updated)
	}
}

func TestMarkInvoicePaidRestampsPaidOn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _, id := seedInvoice(t, f, "0", "0")

	first, err := f.store.MarkInvoicePaid(ctx, id)
	if err != nil {
		t.Fatalf("MarkInvoicePaid: %v", err)
	}
	if first.Status != domain.InvoiceStatusPaid || first.PaidOn == nil {
		t.Fatalf("expected paid invoice, got %+v", first)
	}
	f.clock.Advance(2 * time.Hour)
	second, err := f.store.MarkInvoicePaid(ctx, id)
	if err != nil {
		t.Fatalf("MarkInvoicePaid again: %v", err)
	}
	if second.Status != domain.InvoiceStatusPaid || !second.PaidOn.After(*first.PaidOn) {
		t.Fatalf("expected paidOn to advance, got %v then %v", first.PaidOn, second.PaidOn)
	}
	if !second.Total.Equal(first.Total) {
		t.Fatalf("marking paid must not recompute totals")
	}
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _, id := seedInvoice(t, f, "0", "0")
	if err := f.store.DeleteInvoice(ctx, id); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}
	if _, ok := f.store.GetInvoiceByID(id); ok {
		t.Fatalf("invoice should be gone")
	}
	if len(f.store.ListInvoices()) != 0 {
		t.Fatalf("expected no invoices")
	}
}

func TestGetInvoiceReturnsCopy(t *testing.T) {
	f := newFixture()
	_, _, id := seedInvoice(t, f, "0", "0")
	inv, _ := f.store.GetInvoiceByID(id)
	inv.Items[0].Quantity = 99
	again, _ := f.store.GetInvoiceByID(id)
	if again.Items[0].Quantity != 2 {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestStoreCalculateInvoiceTotal(t *testing.T) {
	s := NewStore(nil)
	items := []domain.InvoiceItem{{Quantity: 1, UnitPrice: dec("100")}}
	if got := s.CalculateInvoiceTotal(items, decimal.Zero, dec("18")); !got.Total.Equal(dec("118")) {
		t.Fatalf("expected 118, got %s", got.Total)
	}
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPatientPatchApplyKeepsUnsetFields(t *testing.T) {
	p := Patient{ID: "p1", Name: "John Smith", Phone: "555", Age: 40, Notes: "knee"}
	phone := "999"
	PatientPatch{Phone: &phone}.Apply(&p)
	if p.Phone != "999" || p.Name != "John Smith" || p.Age != 40 || p.Notes != "knee" {
		t.Fatalf("unexpected patched patient %+v", p)
	}
	if p.ID != "p1" {
		t.Fatalf("patch must not change id")
	}
}

func TestServicePatchApply(t *testing.T) {
	s := Service{ID: "s1", Name: "Massage", Price: dec("500")}
	price := dec("650")
	ServicePatch{Price: &price}.Apply(&s)
	if !s.Price.Equal(price) || s.Name != "Massage" {
		t.Fatalf("unexpected patched service %+v", s)
	}
}

func TestInvoicePatchChangesPricing(t *testing.T) {
	notes := "follow up"
	if (InvoicePatch{Notes: &notes}).ChangesPricing() {
		t.Fatalf("notes should not affect pricing")
	}
	d := dec("5")
	if !(InvoicePatch{Discount: &d}).ChangesPricing() {
		t.Fatalf("discount should affect pricing")
	}
	items := []InvoiceItem{}
	if !(InvoicePatch{Items: &items}).ChangesPricing() {
		t.Fatalf("items should affect pricing")
	}
}

func TestInvoicePatchStatusUnpaidClearsPaidOn(t *testing.T) {
	paid := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	inv := Invoice{ID: "i1", Status: InvoiceStatusPaid, PaidOn: &paid}
	unpaid := InvoiceStatusUnpaid
	InvoicePatch{Status: &unpaid}.Apply(&inv)
	if inv.Status != InvoiceStatusUnpaid || inv.PaidOn != nil {
		t.Fatalf("expected unpaid invoice without paidOn, got %+v", inv)
	}

	settled := InvoiceStatusPaid
	InvoicePatch{Status: &settled, PaidOn: &paid}.Apply(&inv)
	if !inv.IsPaid() || inv.PaidOn == nil || !inv.PaidOn.Equal(paid) {
		t.Fatalf("expected paid invoice with paidOn, got %+v", inv)
	}
	notes := "adjusted"
	InvoicePatch{Notes: &notes}.Apply(&inv)
	if inv.PaidOn == nil {
		t.Fatalf("unrelated patch must keep paidOn")
	}
}

func TestInvoiceCloneIsDeep(t *testing.T) {
	paid := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	inv := Invoice{ID: "i1", Items: []InvoiceItem{{ID: "a", Quantity: 1}}, PaidOn: &paid}
	cp := inv.Clone()
	cp.Items[0].Quantity = 9
	*cp.PaidOn = paid.Add(time.Hour)
	if inv.Items[0].Quantity != 1 {
		t.Fatalf("clone shares items slice")
	}
	if !inv.PaidOn.Equal(paid) {
		t.Fatalf("clone shares paidOn pointer")
	}
}

func TestInvoiceDecodesLegacyDocument(t *testing.T) {
	raw := `{
		"id": "1712345678901abc",
		"patientId": "p1",
		"items": [{"id": "it1", "serviceId": "s1", "quantity": 2, "unitPrice": 450}],
		"discount": 10,
		"taxRate": 18,
		"subtotal": 900,
		"total": 955.8,
		"status": "paid",
		"issuedOn": "2024-04-05T10:11:12.345Z",
		"paidOn": "2024-04-06T08:00:00.000Z"
	}`
	var inv Invoice
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !inv.Total.Equal(dec("955.8")) || !inv.Items[0].UnitPrice.Equal(dec("450")) {
		t.Fatalf("unexpected amounts %+v", inv)
	}
	if inv.IssuedOn.IsZero() || inv.IssuedOn.Year() != 2024 {
		t.Fatalf("issuedOn not parsed: %v", inv.IssuedOn)
	}
	if inv.PaidOn == nil || inv.PaidOn.Day() != 6 {
		t.Fatalf("paidOn not parsed: %v", inv.PaidOn)
	}
	if !inv.IsPaid() {
		t.Fatalf("expected paid status")
	}
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("update: %w", &NotFoundError{Entity: EntityPatient, ID: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(ErrNotFound)")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Entity != EntityPatient || nf.ID != "nope" {
		t.Fatalf("expected NotFoundError details, got %v", err)
	}
	if nf.Error() != "patient nope not found" {
		t.Fatalf("unexpected message %q", nf.Error())
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	snap := Snapshot{
		Patients: []Patient{{ID: "p1"}},
		Invoices: []Invoice{{ID: "i1", Items: []InvoiceItem{{ID: "a"}}}},
	}
	cp := snap.Clone()
	cp.Patients[0].Name = "changed"
	cp.Invoices[0].Items[0].ID = "b"
	if snap.Patients[0].Name != "" || snap.Invoices[0].Items[0].ID != "a" {
		t.Fatalf("clone mutated source snapshot")
	}
	if cp.Services == nil {
		t.Fatalf("clone should allocate empty services")
	}
}

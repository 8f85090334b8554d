// Package domain defines the billing entities, value types and persistence
// contracts shared by physiobill's store, adapters and renderers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the type of record held by the billing store.
type EntityType string

// Supported entity type identifiers used in errors and logs.
const (
	// EntityPatient identifies a patient record.
	EntityPatient EntityType = "patient"
	// EntityService identifies a billable service record.
	EntityService EntityType = "service"
	// EntityInvoice identifies an invoice record.
	EntityInvoice EntityType = "invoice"
)

// InvoiceStatus enumerates the payment states of an invoice.
type InvoiceStatus string

// Canonical invoice statuses.
const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// Patient is a person receiving treatment.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Sex       string    `json:"sex,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service is a billable treatment offered by the clinic.
type Service struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
}

// InvoiceItem is one billed line. UnitPrice is captured when the invoice is
// composed and does not follow later edits to the service price.
type InvoiceItem struct {
	ID        string          `json:"id"`
	ServiceID string          `json:"serviceId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Amount returns quantity × unit price.
func (i InvoiceItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Invoice is a bill issued to a patient. Subtotal and Total are snapshots
// computed when the invoice is created or its pricing inputs change.
type Invoice struct {
	ID        string          `json:"id"`
	PatientID string          `json:"patientId"`
	Items     []InvoiceItem   `json:"items"`
	Discount  decimal.Decimal `json:"discount"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	Status    InvoiceStatus   `json:"status"`
	IssuedOn  time.Time       `json:"issuedOn"`
	PaidOn    *time.Time      `json:"paidOn,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// Clone returns a deep copy of the invoice.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]InvoiceItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	if inv.PaidOn != nil {
		paid := *inv.PaidOn
		out.PaidOn = &paid
	}
	return out
}

// IsPaid reports whether the invoice has been settled.
func (inv Invoice) IsPaid() bool { return inv.Status == InvoiceStatusPaid }

// PatientInput carries the caller-supplied fields of a new patient.
type PatientInput struct {
	Name  string
	Phone string
	Age   int
	Sex   string
	Notes string
}

// ServiceInput carries the caller-supplied fields of a new service.
type ServiceInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
}

// InvoiceInput carries the caller-supplied fields of a new invoice. Status
// defaults to unpaid when empty.
type InvoiceInput struct {
	PatientID string
	Items     []InvoiceItem
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	Status    InvoiceStatus
	Notes     string
}

// PatientPatch lists the patient fields to overwrite; nil fields are kept.
type PatientPatch struct {
	Name  *string
	Phone *string
	Age   *int
	Sex   *string
	Notes *string
}

// Apply merges the patch into p.
func (pp PatientPatch) Apply(p *Patient) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Phone != nil {
		p.Phone = *pp.Phone
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if pp.Sex != nil {
		p.Sex = *pp.Sex
	}
	if pp.Notes != nil {
		p.Notes = *pp.Notes
	}
}

// ServicePatch lists the service fields to overwrite; nil fields are kept.
type ServicePatch struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
}

// Apply merges the patch into s.
func (sp ServicePatch) Apply(s *Service) {
	if sp.Name != nil {
		s.Name = *sp.Name
	}
	if sp.Price != nil {
		s.Price = *sp.Price
	}
	if sp.Description != nil {
		s.Description = *sp.Description
	}
}

// InvoicePatch lists the invoice fields to overwrite; nil fields are kept.
type InvoicePatch struct {
	PatientID *string
	Items     *[]InvoiceItem
	Discount  *decimal.Decimal
	TaxRate   *decimal.Decimal
	Status    *InvoiceStatus
	PaidOn    *time.Time
	Notes     *string
}

// ChangesPricing reports whether the patch touches an input of the invoice totals.
func (ip InvoicePatch) ChangesPricing() bool {
	return ip.Items != nil || ip.Discount != nil || ip.TaxRate != nil
}

// Apply merges the patch into inv. Totals are not recomputed here. Setting
// the status to unpaid clears PaidOn.
func (ip InvoicePatch) Apply(inv *Invoice) {
	if ip.PatientID != nil {
		inv.PatientID = *ip.PatientID
	}
	if ip.Items != nil {
		inv.Items = make([]InvoiceItem, len(*ip.Items))
		copy(inv.Items, *ip.Items)
	}
	if ip.Discount != nil {
		inv.Discount = *ip.Discount
	}
	if ip.TaxRate != nil {
		inv.TaxRate = *ip.TaxRate
	}
	if ip.Status != nil {
		inv.Status = *ip.Status
	}
	if ip.PaidOn != nil {
		paid := *ip.PaidOn
		inv.PaidOn = &paid
	}
	if ip.Status != nil && *ip.Status == InvoiceStatusUnpaid {
		inv.PaidOn = nil
	}
	if ip.Notes != nil {
		inv.Notes = *ip.Notes
	}
}

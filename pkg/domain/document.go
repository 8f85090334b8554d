package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder names used when an invoice references a deleted record.
const (
	UnknownPatientName = "Unknown"
	UnknownServiceName = "Unknown Service"
)

// ClinicInfo identifies the clinic on printed invoices.
type ClinicInfo struct {
	Name       string `json:"name" yaml:"name"`
	Address    string `json:"address" yaml:"address"`
	Phone      string `json:"phone" yaml:"phone"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	Consultant string `json:"consultant,omitempty" yaml:"consultant,omitempty"`
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
	Logo       string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// DefaultClinicInfo returns the clinic profile used when none is configured.
func DefaultClinicInfo() ClinicInfo {
	return ClinicInfo{
		Name:    "Physiotherapy Clinic",
		Address: "123 Health Street, Medical District, City - 123456",
		Phone:   "+91 98765 43210",
		Email:   "info@physioclinic.com",
	}
}

// WithDefaults fills empty required fields from DefaultClinicInfo.
func (c ClinicInfo) WithDefaults() ClinicInfo {
	def := DefaultClinicInfo()
	if strings.TrimSpace(c.Name) == "" {
		c.Name = def.Name
	}
	if strings.TrimSpace(c.Address) == "" {
		c.Address = def.Address
	}
	if strings.TrimSpace(c.Phone) == "" {
		c.Phone = def.Phone
	}
	return c
}

// DocumentLine is an invoice item with its service reference resolved.
type DocumentLine struct {
	Item        InvoiceItem
	ServiceName string
	Amount      decimal.Decimal
	Known       bool
}

// InvoiceDocument is everything needed to print one invoice. Dangling
// references resolve to placeholder records rather than failing.
type InvoiceDocument struct {
	Invoice      Invoice
	Patient      Patient
	PatientKnown bool
	Services     []Service
	Lines        []DocumentLine
	Totals       InvoiceTotals
	Clinic       ClinicInfo
}

// Number returns the short printable invoice number: the last eight
// characters of the id, upper-cased.
func (d InvoiceDocument) Number() string {
	return ShortInvoiceNumber(d.Invoice.ID)
}

// ShortInvoiceNumber returns the last eight characters of id, upper-cased.
func ShortInvoiceNumber(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

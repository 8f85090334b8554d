package core

import (
	"context"

	"github.com/shopspring/decimal"

	"physiobill/pkg/domain"
)

// CalculateInvoiceTotal exposes domain.CalculateInvoiceTotal on the store.
func (s *Store) CalculateInvoiceTotal(items []domain.InvoiceItem, discount, taxRate decimal.Decimal) domain.InvoiceTotals {
	return domain.CalculateInvoiceTotal(items, discount, taxRate)
}

// CreateInvoice computes the totals, stamps the issue date and stores the
// invoice. Items without an id receive one. The new invoice id is returned.
func (s *Store) CreateInvoice(ctx context.Context, in domain.InvoiceInput) (string, error) {
	now := s.now()
	items := make([]domain.InvoiceItem, len(in.Items))
	copy(items, in.Items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = s.newID()
		}
	}
	totals := domain.CalculateInvoiceTotal(items, in.Discount, in.TaxRate)
	status := in.Status
	if status == "" {
		status = domain.InvoiceStatusUnpaid
	}
	invoice := domain.Invoice{
		ID:        s.newID(),
		PatientID: in.PatientID,
		Items:     items,
		Discount:  in.Discount,
		TaxRate:   in.TaxRate,
		Subtotal:  totals.Subtotal,
		Total:     totals.Total,
		Status:    status,
		IssuedOn:  now,
		Notes:     in.Notes,
	}
	if status == domain.InvoiceStatusPaid {
		invoice.PaidOn = &now
	}
	err := s.mutate(ctx, "create_invoice", func(st *domain.Snapshot) error {
		st.Invoices = append(st.Invoices, invoice)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("invoice created", "invoice_id", invoice.ID, "patient_id", invoice.PatientID, "total", invoice.Total.StringFixed(2))
	return invoice.ID, nil
}

// UpdateInvoice merges patch into the invoice. Changing items, discount or
// tax rate recomputes the stored subtotal and total.
func (s *Store) UpdateInvoice(ctx context.Context, id string, patch domain.InvoicePatch) (domain.Invoice, error) {
	var updated domain.Invoice
	err := s.mutate(ctx, "update_invoice", func(st *domain.Snapshot) error {
		idx := indexOf(st.Invoices, id, func(inv domain.Invoice) string { return inv.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityInvoice, ID: id}
		}
		inv := &st.Invoices[idx]
		patch.Apply(inv)
		if patch.ChangesPricing() {
			for i := range inv.Items {
				if inv.Items[i].ID == "" {
					inv.Items[i].ID = s.newID()
				}
			}
			totals := inv.Totals()
			inv.Subtotal = totals.Subtotal
			inv.Total = totals.Total
		}
		updated = inv.Clone()
		return nil
	})
	return updated, err
}

// DeleteInvoice removes the invoice.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_invoice", func(st *domain.Snapshot) error {
		idx := indexOf(st.Invoices, id, func(inv domain.Invoice) string { return inv.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityInvoice, ID: id}
		}
		st.Invoices = append(st.Invoices[:idx], st.Invoices[idx+1:]...)
		return nil
	})
}

// MarkInvoicePaid sets the invoice status to paid and stamps the payment
// time. Marking an already paid invoice re-stamps paidOn. Totals are untouched.
func (s *Store) MarkInvoicePaid(ctx context.Context, id string) (domain.Invoice, error) {
	var updated domain.Invoice
	err := s.mutate(ctx, "mark_invoice_paid", func(st *domain.Snapshot) error {
		idx := indexOf(st.Invoices, id, func(inv domain.Invoice) string { return inv.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityInvoice, ID: id}
		}
		paid := s.now()
		st.Invoices[idx].Status = domain.InvoiceStatusPaid
		st.Invoices[idx].PaidOn = &paid
		updated = st.Invoices[idx].Clone()
		return nil
	})
	if err == nil {
		s.logger.Info("invoice paid", "invoice_id", id)
	}
	return updated, err
}

// GetInvoiceByID returns a copy of the invoice with the given id.
func (s *Store) GetInvoiceByID(id string) (domain.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.state.Invoices, id, func(inv domain.Invoice) string { return inv.ID })
	if idx < 0 {
		return domain.Invoice{}, false
	}
	return s.state.Invoices[idx].Clone(), true
}

// ListInvoices returns copies of every invoice in insertion order.
func (s *Store) ListInvoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneInvoices(s.state.Invoices, nil)
}

// InvoicesForPatient returns the invoices billed to patientID.
func (s *Store) InvoicesForPatient(patientID string) []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneInvoices(s.state.Invoices, func(inv domain.Invoice) bool { return inv.PatientID == patientID })
}

func cloneInvoices(in []domain.Invoice, keep func(domain.Invoice) bool) []domain.Invoice {
	out := make([]domain.Invoice, 0, len(in))
	for _, inv := range in {
		if keep == nil || keep(inv) {
			out = append(out, inv.Clone())
		}
	}
	return out
}

package core

import (
	"github.com/shopspring/decimal"

	"physiobill/pkg/domain"
)

// DashboardStats aggregates revenue over every invoice. It scans the
// collections on each call. Invoices whose status is neither paid nor unpaid
// count towards TotalInvoices only.
func (s *Store) DashboardStats() domain.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.DashboardStats{
		TotalRevenue:      decimal.Zero,
		OutstandingAmount: decimal.Zero,
		TotalPatients:     len(s.state.Patients),
		TotalInvoices:     len(s.state.Invoices),
	}
	for _, inv := range s.state.Invoices {
		switch inv.Status {
		case domain.InvoiceStatusPaid:
			stats.TotalRevenue = stats.TotalRevenue.Add(inv.Total)
		case domain.InvoiceStatusUnpaid:
			stats.OutstandingAmount = stats.OutstandingAmount.Add(inv.Total)
		}
	}
	return stats
}

// Report summarises the invoices issued since the start of period, measured
// in the store clock's location.
func (s *Store) Report(period domain.ReportPeriod) domain.PeriodReport {
	from := period.Start(s.now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep := domain.PeriodReport{
		Period:      period,
		From:        from,
		Revenue:     decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, inv := range s.state.Invoices {
		if inv.IssuedOn.Before(from) {
			continue
		}
		rep.InvoiceCount++
		switch inv.Status {
		case domain.InvoiceStatusPaid:
			rep.PaidCount++
			rep.Revenue = rep.Revenue.Add(inv.Total)
		case domain.InvoiceStatusUnpaid:
			rep.UnpaidCount++
			rep.Outstanding = rep.Outstanding.Add(inv.Total)
		}
	}
	for _, p := range s.state.Patients {
		if !p.CreatedAt.Before(from) {
			rep.PatientsAdded++
		}
	}
	return rep
}

// ResolveInvoice assembles the printable view of an invoice. References to
// deleted patients or services resolve to placeholders.
func (s *Store) ResolveInvoice(id string) (domain.InvoiceDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.state.Invoices, id, func(inv domain.Invoice) string { return inv.ID })
	if idx < 0 {
		return domain.InvoiceDocument{}, &domain.NotFoundError{Entity: domain.EntityInvoice, ID: id}
	}
	inv := s.state.Invoices[idx].Clone()
	doc := domain.InvoiceDocument{
		Invoice: inv,
		Patient: domain.Patient{ID: inv.PatientID, Name: domain.UnknownPatientName},
		Clinic:  s.clinic,
	}
	if pIdx := indexOf(s.state.Patients, inv.PatientID, func(p domain.Patient) string { return p.ID }); pIdx >= 0 {
		doc.Patient = s.state.Patients[pIdx]
		doc.PatientKnown = true
	}
	seen := map[string]bool{}
	for _, item := range inv.Items {
		line := domain.DocumentLine{Item: item, ServiceName: domain.UnknownServiceName, Amount: item.Amount()}
		if sIdx := indexOf(s.state.Services, item.ServiceID, func(sv domain.Service) string { return sv.ID }); sIdx >= 0 {
			svc := s.state.Services[sIdx]
			line.ServiceName = svc.Name
			line.Known = true
			if !seen[svc.ID] {
				seen[svc.ID] = true
				doc.Services = append(doc.Services, svc)
			}
		}
		doc.Lines = append(doc.Lines, line)
	}
	doc.Totals = storedBreakdown(inv)
	return doc, nil
}

// storedBreakdown derives the discount and tax lines from the persisted
// subtotal so a printed invoice always agrees with the stored total.
func storedBreakdown(inv domain.Invoice) domain.InvoiceTotals {
	hundred := decimal.NewFromInt(100)
	discount := inv.Subtotal.Mul(inv.Discount).Div(hundred)
	taxable := inv.Subtotal.Sub(discount)
	return domain.InvoiceTotals{
		Subtotal:       inv.Subtotal,
		DiscountAmount: discount,
		Taxable:        taxable,
		TaxAmount:      taxable.Mul(inv.TaxRate).Div(hundred),
		Total:          inv.Total,
	}
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats aggregates revenue across all invoices.
type DashboardStats struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	TotalPatients     int             `json:"totalPatients"`
	TotalInvoices     int             `json:"totalInvoices"`
}

// ReportPeriod selects the issue-date window of a PeriodReport.
type ReportPeriod string

// Supported report periods.
const (
	PeriodToday ReportPeriod = "today"
	PeriodWeek  ReportPeriod = "week"
	PeriodMonth ReportPeriod = "month"
	PeriodAll   ReportPeriod = "all"
)

// ParseReportPeriod normalises a user-supplied period name.
func ParseReportPeriod(raw string) (ReportPeriod, error) {
	switch p := ReportPeriod(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	case "":
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown report period %q", raw)
	}
}

// Start returns the first instant of the period containing now, in now's
// location. Weeks start on Sunday. PeriodAll returns the zero time.
func (p ReportPeriod) Start(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return midnight
	case PeriodWeek:
		return midnight.AddDate(0, 0, -int(midnight.Weekday()))
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// PeriodReport summarises the invoices issued within a period.
type PeriodReport struct {
	Period        ReportPeriod    `json:"period"`
	From          time.Time       `json:"from"`
	InvoiceCount  int             `json:"invoiceCount"`
	PaidCount     int             `json:"paidCount"`
	UnpaidCount   int             `json:"unpaidCount"`
	Revenue       decimal.Decimal `json:"revenue"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PatientsAdded int             `json:"patientsAdded"`
}

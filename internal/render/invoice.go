// Package render lays out printable invoices and CLI listings with lipgloss.
// Output written to a terminal is styled; anything else gets plain text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"physiobill/pkg/domain"
)

// Currency prefixes every printed amount.
const Currency = "₹"

// DateLayout formats dates on printed invoices.
const DateLayout = "02 Jan 2006"

const pageWidth = 64

var (
	accent  = lipgloss.Color("#0F766E") // teal
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#16A34A")
	pending = lipgloss.Color("#EA580C")
)

// Renderer owns the lipgloss styles bound to one output.
type Renderer struct {
	lg *lipgloss.Renderer

	header  lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	paid    lipgloss.Style
	unpaid  lipgloss.Style
	totals  lipgloss.Style
	total   lipgloss.Style
	cell    lipgloss.Style
	headCel lipgloss.Style
}

// New binds a Renderer to w. The color profile is detected from w.
func New(w io.Writer) *Renderer {
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		lg:      lg,
		header:  lg.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 2).Width(pageWidth - 2),
		title:   lg.NewStyle().Bold(true).Foreground(accent),
		label:   lg.NewStyle().Bold(true),
		dim:     lg.NewStyle().Foreground(dim),
		paid:    lg.NewStyle().Bold(true).Foreground(success),
		unpaid:  lg.NewStyle().Bold(true).Foreground(pending),
		totals:  lg.NewStyle().Width(pageWidth).Align(lipgloss.Right),
		total:   lg.NewStyle().Bold(true),
		cell:    lg.NewStyle().Padding(0, 1),
		headCel: lg.NewStyle().Bold(true).Padding(0, 1),
	}
}

// Document renders doc as plain text suitable for storing or printing.
func Document(doc domain.InvoiceDocument) string {
	return New(io.Discard).Invoice(doc)
}

// Invoice lays out doc: clinic header, invoice details, bill-to block,
// items table, totals and payment footer.
func (r *Renderer) Invoice(doc domain.InvoiceDocument) string {
	var b strings.Builder
	clinic := doc.Clinic.WithDefaults()
	inv := doc.Invoice

	b.WriteString(r.header.Render(r.clinicBlock(clinic)))
	b.WriteString("\n\n")

	b.WriteString(r.title.Render("INVOICE"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", r.label.Render("Invoice #:"), doc.Number())
	fmt.Fprintf(&b, "%s %s\n", r.label.Render("Date:"), FormatDate(inv.IssuedOn))
	fmt.Fprintf(&b, "%s %s\n\n", r.label.Render("Status:"), strings.ToUpper(string(inv.Status)))

	b.WriteString(r.label.Render("Bill To:"))
	b.WriteString("\n")
	b.WriteString(doc.Patient.Name)
	b.WriteString("\n")
	if doc.PatientKnown {
		if doc.Patient.Phone != "" {
			fmt.Fprintf(&b, "Phone: %s\n", doc.Patient.Phone)
		}
		if doc.Patient.Age > 0 {
			fmt.Fprintf(&b, "Age: %d\n", doc.Patient.Age)
		}
	}
	b.WriteString("\n")

	b.WriteString(r.label.Render("Services"))
	b.WriteString("\n")
	b.WriteString(r.itemsTable(doc.Lines))
	b.WriteString("\n\n")

	b.WriteString(r.totalsBlock(inv, doc.Totals))
	b.WriteString("\n\n")

	if inv.IsPaid() && inv.PaidOn != nil {
		b.WriteString(r.paid.Render("PAID on " + FormatDate(*inv.PaidOn)))
	} else {
		b.WriteString(r.unpaid.Render("PAYMENT PENDING"))
	}
	b.WriteString("\n")
	if notes := strings.TrimSpace(inv.Notes); notes != "" {
		fmt.Fprintf(&b, "\n%s %s\n", r.label.Render("Notes:"), notes)
	}
	b.WriteString("\n")
	b.WriteString(r.dim.Render("Thank you for your business!"))
	b.WriteString("\n\n")
	b.WriteString("Signature: ________________________\n")
	return b.String()
}

func (r *Renderer) clinicBlock(c domain.ClinicInfo) string {
	lines := []string{r.title.Render(c.Name), c.Address, "Phone: " + c.Phone}
	if c.Email != "" {
		lines = append(lines, "Email: "+c.Email)
	}
	if c.Consultant != "" {
		lines = append(lines, "Consultant: "+c.Consultant)
	}
	if c.Department != "" {
		lines = append(lines, "Department: "+c.Department)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) itemsTable(lines []domain.DocumentLine) string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			l.ServiceName,
			strconv.Itoa(l.Item.Quantity),
			Money(l.Item.UnitPrice),
			Money(l.Amount),
		})
	}
	return r.Table([]string{"Service", "Qty", "Rate", "Amount"}, rows, 1, 2, 3)
}

func (r *Renderer) totalsBlock(inv domain.Invoice, t domain.InvoiceTotals) string {
	lines := []string{"Subtotal: " + Money(t.Subtotal)}
	if inv.Discount.IsPositive() {
		lines = append(lines, fmt.Sprintf("Discount (%s%%): -%s", Percent(inv.Discount), Money(t.DiscountAmount)))
	}
	if inv.TaxRate.IsPositive() {
		lines = append(lines, fmt.Sprintf("Tax (%s%%): %s", Percent(inv.TaxRate), Money(t.TaxAmount)))
	}
	lines = append(lines, r.total.Render("Total: "+Money(t.Total)))
	return r.totals.Render(strings.Join(lines, "\n"))
}

// Table renders a bordered table. Columns listed in right are right-aligned.
func (r *Renderer) Table(headers []string, rows [][]string, right ...int) string {
	align := make(map[int]bool, len(right))
	for _, c := range right {
		align[c] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.dim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := r.cell
			if row == table.HeaderRow {
				s = r.headCel
			}
			if align[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	return t.String()
}

// Money formats an amount with the currency symbol and two decimals.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + Currency + d.Neg().StringFixed(2)
	}
	return Currency + d.StringFixed(2)
}

// Percent formats a rate without trailing zeros.
func Percent(d decimal.Decimal) string {
	return d.String()
}

// FormatDate formats t for print; the zero time prints as "-".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

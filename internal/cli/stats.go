package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"physiobill/internal/render"
	"physiobill/pkg/domain"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show revenue and outstanding totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := opts.app.store.DashboardStats()
			rows := [][]string{
				{"Total revenue", render.Money(st.TotalRevenue)},
				{"Outstanding", render.Money(st.OutstandingAmount)},
				{"Patients", strconv.Itoa(st.TotalPatients)},
				{"Invoices", strconv.Itoa(st.TotalInvoices)},
			}
			return printTable(cmd, []string{"Metric", "Value"}, rows, 1)
		},
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "report [today|week|month|all]",
		Short:     "Summarise invoices issued in a period (default month)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.PeriodToday), string(domain.PeriodWeek), string(domain.PeriodMonth), string(domain.PeriodAll)},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) > 0 {
				raw = args[0]
			}
			period, err := domain.ParseReportPeriod(raw)
			if err != nil {
				return err
			}
			rep := opts.app.store.Report(period)
			from := "all time"
			if !rep.From.IsZero() {
				from = render.FormatDate(rep.From)
			}
			rows := [][]string{
				{"Period", string(rep.Period)},
				{"From", from},
				{"Invoices", strconv.Itoa(rep.InvoiceCount)},
				{"Paid", strconv.Itoa(rep.PaidCount)},
				{"Unpaid", strconv.Itoa(rep.UnpaidCount)},
				{"Revenue", render.Money(rep.Revenue)},
				{"Outstanding", render.Money(rep.Outstanding)},
				{"New patients", strconv.Itoa(rep.PatientsAdded)},
			}
			return printTable(cmd, []string{"Report", ""}, rows, 1)
		},
	}
}

package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"physiobill/internal/core"
	"physiobill/internal/documents"
	"physiobill/internal/render"
	"physiobill/pkg/domain"
)

func newInvoicesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"invoice"},
		Short:   "Create, settle and print invoices",
	}
	cmd.AddCommand(newInvoicesListCmd(opts))
	cmd.AddCommand(newInvoicesCreateCmd(opts))
	cmd.AddCommand(newInvoicesPayCmd(opts))
	cmd.AddCommand(newInvoicesDeleteCmd(opts))
	cmd.AddCommand(newInvoicesRenderCmd(opts))
	cmd.AddCommand(newInvoicesShareCmd(opts))
	cmd.AddCommand(newInvoicesDocumentsCmd(opts))
	return cmd
}

func newInvoicesListCmd(opts *rootOptions) *cobra.Command {
	var patientID, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.app.store
			invoices := store.ListInvoices()
			if patientID != "" {
				invoices = store.InvoicesForPatient(patientID)
			}
			sort.SliceStable(invoices, func(i, j int) bool {
				return invoices[i].IssuedOn.After(invoices[j].IssuedOn)
			})
			rows := make([][]string, 0, len(invoices))
			for _, inv := range invoices {
				if status != "" && !strings.EqualFold(string(inv.Status), status) {
					continue
				}
				name := domain.UnknownPatientName
				if p, ok := store.GetPatientByID(inv.PatientID); ok {
					name = p.Name
				}
				rows = append(rows, []string{
					domain.ShortInvoiceNumber(inv.ID),
					render.FormatDate(inv.IssuedOn),
					name,
					strconv.Itoa(len(inv.Items)),
					render.Money(inv.Total),
					strings.ToUpper(string(inv.Status)),
				})
			}
			if len(rows) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No invoices found.")
				return err
			}
			return printTable(cmd, []string{"Number", "Date", "Patient", "Items", "Total", "Status"}, rows, 3, 4)
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "only invoices of this patient id")
	cmd.Flags().StringVar(&status, "status", "", "only invoices with this status (paid|unpaid)")
	return cmd
}

func newInvoicesCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		patientID, discount, tax, notes string
		items                           []string
		paid                            bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Bill a patient for one or more services",
		Long:  "Bill a patient. Each --item is <service-id>:<quantity>[:<unit price>]; the unit price defaults to the service price.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.app.store
			if _, ok := store.GetPatientByID(patientID); !ok {
				return &domain.NotFoundError{Entity: domain.EntityPatient, ID: patientID}
			}
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}
			lines := make([]domain.InvoiceItem, 0, len(items))
			for _, raw := range items {
				item, err := parseItem(store, raw)
				if err != nil {
					return err
				}
				lines = append(lines, item)
			}
			disc, err := parsePercent("discount", discount)
			if err != nil {
				return err
			}
			rate, err := parsePercent("tax", tax)
			if err != nil {
				return err
			}
			in := domain.InvoiceInput{PatientID: patientID, Items: lines, Discount: disc, TaxRate: rate, Notes: notes}
			if paid {
				in.Status = domain.InvoiceStatusPaid
			}
			id, err := store.CreateInvoice(cmd.Context(), in)
			if err != nil {
				return err
			}
			inv, _ := store.GetInvoiceByID(id)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %s for %s (%s)\n", domain.ShortInvoiceNumber(id), render.Money(inv.Total), id)
			return err
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "patient id")
	cmd.Flags().StringArrayVar(&items, "item", nil, "billed service as <service-id>:<quantity>[:<unit price>]")
	cmd.Flags().StringVar(&discount, "discount", "0", "discount percentage")
	cmd.Flags().StringVar(&tax, "tax", "0", "tax percentage")
	cmd.Flags().StringVar(&notes, "notes", "", "notes printed on the invoice")
	cmd.Flags().BoolVar(&paid, "paid", false, "record the invoice as already paid")
	return cmd
}

func parseItem(store *core.Store, raw string) (domain.InvoiceItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return domain.InvoiceItem{}, fmt.Errorf("invalid --item %q: want <service-id>:<quantity>[:<unit price>]", raw)
	}
	svc, ok := store.GetServiceByID(parts[0])
	if !ok {
		return domain.InvoiceItem{}, &domain.NotFoundError{Entity: domain.EntityService, ID: parts[0]}
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil || qty < 1 {
		return domain.InvoiceItem{}, fmt.Errorf("invalid quantity in --item %q", raw)
	}
	item := domain.InvoiceItem{ServiceID: svc.ID, Quantity: qty, UnitPrice: svc.Price}
	if len(parts) == 3 {
		price, err := parseDecimal("item", parts[2])
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		item.UnitPrice = price
	}
	return item, nil
}

// resolveInvoiceID accepts a full id or the printed eight-character number.
func resolveInvoiceID(store *core.Store, raw string) (string, error) {
	if _, ok := store.GetInvoiceByID(raw); ok {
		return raw, nil
	}
	var matches []string
	for _, inv := range store.ListInvoices() {
		if strings.EqualFold(domain.ShortInvoiceNumber(inv.ID), raw) {
			matches = append(matches, inv.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", &domain.NotFoundError{Entity: domain.EntityInvoice, ID: raw}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("invoice number %s is ambiguous; use the full id", raw)
	}
}

func newInvoicesPayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id|number>",
		Short: "Mark an invoice as paid today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveInvoiceID(opts.app.store, args[0])
			if err != nil {
				return err
			}
			inv, err := opts.app.store.MarkInvoicePaid(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s paid on %s\n", domain.ShortInvoiceNumber(inv.ID), render.FormatDate(*inv.PaidOn))
			return err
		},
	}
}

func newInvoicesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|number>",
		Short: "Remove an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveInvoiceID(opts.app.store, args[0])
			if err != nil {
				return err
			}
			if err := opts.app.store.DeleteInvoice(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted invoice %s\n", domain.ShortInvoiceNumber(id))
			return err
		},
	}
}

func newInvoicesRenderCmd(opts *rootOptions) *cobra.Command {
	var preview bool
	cmd := &cobra.Command{
		Use:   "render <id|number>",
		Short: "Print an invoice and store it as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveInvoiceID(opts.app.store, args[0])
			if err != nil {
				return err
			}
			doc, err := opts.app.store.ResolveInvoice(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if preview {
				_, err = fmt.Fprint(out, render.New(out).Invoice(doc))
				return err
			}
			art, err := opts.app.publisher.Generate(cmd.Context(), doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "Stored invoice %s as %s (%d bytes)\n", doc.Number(), art.Key, art.Size)
			return err
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "print to the terminal without storing")
	return cmd
}

func newInvoicesShareCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "share <document-key>",
		Short: "Print a link to a stored invoice document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.app.publisher.Share(cmd.Context(), args[0])
			if errors.Is(err, documents.ErrSharingUnavailable) {
				opts.app.logger.Warn("share requested on a store without links", "key", args[0])
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), url)
			return err
		},
	}
}

func newInvoicesDocumentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "documents [id|number]",
		Short: "List stored invoice documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoiceID := ""
			if len(args) == 1 {
				id, err := resolveInvoiceID(opts.app.store, args[0])
				if err != nil {
					return err
				}
				invoiceID = id
			}
			infos, err := opts.app.publisher.List(cmd.Context(), invoiceID)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No documents stored.")
				return err
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.Key, strconv.FormatInt(info.Size, 10), info.LastModified.Format("2006-01-02 15:04")})
			}
			return printTable(cmd, []string{"Key", "Bytes", "Stored"}, rows, 1)
		},
	}
}

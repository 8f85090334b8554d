package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"physiobill/internal/render"
	"physiobill/pkg/domain"
)

func newServicesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"service"},
		Short:   "Manage billable services",
	}
	cmd.AddCommand(newServicesSearchCmd(opts))
	cmd.AddCommand(newServicesAddCmd(opts))
	cmd.AddCommand(newServicesUpdateCmd(opts))
	cmd.AddCommand(newServicesDeleteCmd(opts))
	return cmd
}

func newServicesSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "search [query]",
		Aliases: []string{"list"},
		Short:   "Find services by name",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services := opts.app.store.SearchServices(strings.Join(args, " "))
			if len(services) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No services found.")
				return err
			}
			return printTable(cmd, []string{"ID", "Name", "Price", "Description"}, serviceRows(services), 2)
		},
	}
}

func newServicesAddCmd(opts *rootOptions) *cobra.Command {
	var name, price, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a billable service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			amount, err := parseDecimal("price", price)
			if err != nil {
				return err
			}
			if amount.IsNegative() {
				return fmt.Errorf("--price must not be negative")
			}
			svc, err := opts.app.store.AddService(cmd.Context(), domain.ServiceInput{Name: name, Price: amount, Description: description})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added service %s (%s)\n", svc.Name, svc.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "service name")
	cmd.Flags().StringVar(&price, "price", "0", "price per session")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func newServicesUpdateCmd(opts *rootOptions) *cobra.Command {
	var name, price, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a service; existing invoices keep their prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.ServicePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				name = strings.TrimSpace(name)
				if name == "" {
					return fmt.Errorf("--name must not be empty")
				}
				patch.Name = &name
			}
			if flags.Changed("price") {
				amount, err := parseDecimal("price", price)
				if err != nil {
					return err
				}
				if amount.IsNegative() {
					return fmt.Errorf("--price must not be negative")
				}
				patch.Price = &amount
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if patch == (domain.ServicePatch{}) {
				return fmt.Errorf("no fields to update")
			}
			svc, err := opts.app.store.UpdateService(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated service %s at %s (%s)\n", svc.Name, render.Money(svc.Price), svc.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "service name")
	cmd.Flags().StringVar(&price, "price", "", "price per session")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func newServicesDeleteCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a service; existing invoices keep their prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if refs := invoicesUsingService(opts.app.store.ListInvoices(), id); refs > 0 && !force {
				return fmt.Errorf("service %s is billed on %d invoice(s); use --force to delete anyway", id, refs)
			}
			if err := opts.app.store.DeleteService(cmd.Context(), id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted service %s\n", id)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete even when invoices bill the service")
	return cmd
}

func invoicesUsingService(invoices []domain.Invoice, serviceID string) int {
	n := 0
	for _, inv := range invoices {
		for _, item := range inv.Items {
			if item.ServiceID == serviceID {
				n++
				break
			}
		}
	}
	return n
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"physiobill/pkg/domain"
)

func newPatientsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patients",
		Aliases: []string{"patient"},
		Short:   "Manage patients",
	}
	cmd.AddCommand(newPatientsSearchCmd(opts))
	cmd.AddCommand(newPatientsAddCmd(opts))
	cmd.AddCommand(newPatientsUpdateCmd(opts))
	cmd.AddCommand(newPatientsDeleteCmd(opts))
	return cmd
}

func newPatientsSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "search [query]",
		Aliases: []string{"list"},
		Short:   "Find patients by name or phone",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patients := opts.app.store.SearchPatients(strings.Join(args, " "))
			if len(patients) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No patients found.")
				return err
			}
			return printTable(cmd, []string{"ID", "Name", "Phone", "Age", "Sex"}, patientRows(patients), 3)
		},
	}
}

func newPatientsAddCmd(opts *rootOptions) *cobra.Command {
	var in domain.PatientInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Name = strings.TrimSpace(in.Name)
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			in.Phone = strings.TrimSpace(in.Phone)
			if in.Phone == "" {
				return fmt.Errorf("--phone is required")
			}
			if in.Age <= 0 {
				return fmt.Errorf("--age must be a positive number")
			}
			p, err := opts.app.store.AddPatient(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added patient %s (%s)\n", p.Name, p.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "patient name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "contact phone")
	cmd.Flags().IntVar(&in.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&in.Sex, "sex", "", "sex")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "clinical notes")
	return cmd
}

func newPatientsUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		name, phone, sex, notes string
		age                     int
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change patient details; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.PatientPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				name = strings.TrimSpace(name)
				if name == "" {
					return fmt.Errorf("--name must not be empty")
				}
				patch.Name = &name
			}
			if flags.Changed("phone") {
				phone = strings.TrimSpace(phone)
				if phone == "" {
					return fmt.Errorf("--phone must not be empty")
				}
				patch.Phone = &phone
			}
			if flags.Changed("age") {
				if age <= 0 {
					return fmt.Errorf("--age must be a positive number")
				}
				patch.Age = &age
			}
			if flags.Changed("sex") {
				patch.Sex = &sex
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if patch == (domain.PatientPatch{}) {
				return fmt.Errorf("no fields to update")
			}
			p, err := opts.app.store.UpdatePatient(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %s (%s)\n", p.Name, p.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "patient name")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&sex, "sex", "", "sex")
	cmd.Flags().StringVar(&notes, "notes", "", "clinical notes")
	return cmd
}

func newPatientsDeleteCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if refs := opts.app.store.InvoicesForPatient(id); len(refs) > 0 && !force {
				return fmt.Errorf("patient %s has %d invoice(s); use --force to delete anyway", id, len(refs))
			}
			if err := opts.app.store.DeletePatient(cmd.Context(), id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted patient %s\n", id)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete even when invoices reference the patient")
	return cmd
}

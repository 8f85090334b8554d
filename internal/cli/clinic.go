package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"physiobill/internal/config"
)

func newClinicCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Show or update the clinic profile printed on invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := opts.app.store.ClinicInfo()
			rows := [][]string{
				{"Name", info.Name},
				{"Address", info.Address},
				{"Phone", info.Phone},
				{"Email", info.Email},
				{"Consultant", info.Consultant},
				{"Department", info.Department},
			}
			return printTable(cmd, []string{"Clinic", ""}, rows)
		},
	}
	cmd.AddCommand(newClinicSetCmd(opts))
	return cmd
}

func newClinicSetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update clinic profile fields and save them to the clinic file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := opts.app.store.ClinicInfo()
			fields := map[string]*string{
				"name":       &info.Name,
				"address":    &info.Address,
				"phone":      &info.Phone,
				"email":      &info.Email,
				"consultant": &info.Consultant,
				"department": &info.Department,
			}
			changed := 0
			for flag, target := range fields {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*target = v
					changed++
				}
			}
			if changed == 0 {
				return fmt.Errorf("no fields to update")
			}
			path := opts.app.cfg.ClinicFile
			if err := config.SaveClinic(path, info.WithDefaults()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved clinic profile to %s\n", path)
			return err
		},
	}
	for _, f := range []string{"name", "address", "phone", "email", "consultant", "department"} {
		cmd.Flags().String(f, "", "clinic "+f)
	}
	return cmd
}

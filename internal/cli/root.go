// Package cli implements the physiobill command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	envFile     string
	metricsFile string
	app         *app
}

func newRootCmd() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "physiobill",
		Short:         "Billing for a physiotherapy clinic",
		Long:          "physiobill keeps patients, services and invoices for a physiotherapy clinic and prints invoices.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts.envFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return opts.release()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load configuration from this env file")
	cmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-textfile", "", "write store metrics to this file on exit")

	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newPatientsCmd(opts))
	cmd.AddCommand(newServicesCmd(opts))
	cmd.AddCommand(newInvoicesCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newClinicCmd(opts))
	return cmd, opts
}

// release closes the app opened for the current invocation, if any.
func (o *rootOptions) release() error {
	if o.app == nil {
		return nil
	}
	err := o.app.close(o.metricsFile)
	o.app = nil
	return err
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the command line against os.Args.
func Execute(ctx context.Context) error {
	cmd, opts := newRoot()
	err := cmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if relErr := opts.release(); err == nil {
		err = relErr
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag, driverFlag, dsnFlag string

	ctx := newCommandContext(&configFlag, &driverFlag, &dsnFlag)

	rootCmd := &cobra.Command{
		Use:           "fieldlogctl",
		Short:         "FieldLog administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Server configuration file (JSON)")
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Store driver override (sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "Database DSN override")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newDeploymentsCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newSecretCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

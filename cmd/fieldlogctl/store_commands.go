package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/seed"
	"github.com/dmitrijs2005/fieldlog/internal/server/db"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(s *db.Store) error {
				cfg, _ := ctx.ensureConfig()
				fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", cfg.StoreDriver)
				return nil
			})
		},
	}
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load deployments, tapes and inspection records from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fixture, err := seed.Load(f)
			if err != nil {
				return err
			}

			return ctx.withStore(cmd.Context(), func(s *db.Store) error {
				sum, err := seed.Run(cmd.Context(), s.DB, s.Manager, fixture, time.Now().UTC())
				if err != nil {
					return fmt.Errorf("seed %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", sum)
				return nil
			})
		},
	}
}

func newDeploymentsCommand(ctx *commandContext) *cobra.Command {
	var jobPack, structure, mode string
	var limit int

	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "List deployments of a job pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseMode(mode)
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), func(s *db.Store) error {
				list, err := s.Repositories().Deployments.ListByScope(cmd.Context(), m, jobPack, structure, limit)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No deployments.")
					return nil
				}

				rows := make([][]string, 0, len(list))
				for i, d := range list {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						d.ID,
						d.DisplayName(),
						d.SubType,
						string(d.Status),
						d.StructureID,
						d.CreatedAt.UTC().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "ID", "Name", "Type", "Status", "Structure", "Created"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&jobPack, "job-pack", "j", "", "Job pack id")
	cmd.Flags().StringVarP(&structure, "structure", "s", "", "Structure id (all structures when empty)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeDiving), "Deployment mode (DIVING or ROV)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of deployments")
	_ = cmd.MarkFlagRequired("job-pack")
	return cmd
}

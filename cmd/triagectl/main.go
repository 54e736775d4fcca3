package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/triage-api/internal/config"
	"github.com/jwalitptl/triage-api/internal/email"
	"github.com/jwalitptl/triage-api/internal/model"
	"github.com/jwalitptl/triage-api/internal/repository/postgres"
	eventService "github.com/jwalitptl/triage-api/internal/service/event"
	resourceService "github.com/jwalitptl/triage-api/internal/service/resource"
	"github.com/jwalitptl/triage-api/internal/triage"
	"github.com/jwalitptl/triage-api/pkg/logger"
	"github.com/jwalitptl/triage-api/pkg/metrics"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "triagectl",
		Short:         "Operate the triage engine and its database",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Directory containing config.yml")

	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(scoreCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		return config.LoadConfig()
	}
	return config.LoadConfig(dir)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default resource stock into an empty registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := resourceService.NewService(
				postgres.NewResourceRepository(db),
				eventService.NewService(postgres.NewOutboxRepository(db)),
				email.NopService{},
				0,
				logger.NewLogger(cfg.Log.ToLoggerConfig()),
				metrics.Discard(),
			)
			n, err := svc.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Registry already populated; nothing seeded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d resource(s).\n", n)
			return nil
		},
	}
}

// scoreCmd runs the scorer offline against an assessment document.
func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an assessment read from --file or stdin",
		Example: `  echo '{"respiratory_rate":35,"pulse":130,"consciousness":"voice"}' | triagectl score
  triagectl score --file casualty.json --scarce oxygen`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			scarce, _ := cmd.Flags().GetStringSlice("scarce")
			asJSON, _ := cmd.Flags().GetBool("json")

			var in io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var req model.CreatePatientRequest
			if err := json.NewDecoder(in).Decode(&req); err != nil {
				return fmt.Errorf("invalid assessment: %w", err)
			}

			out := score(req.Assessment(), scarcitySnapshot(scarce))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "category: %s\n", out.Category)
			fmt.Fprintf(w, "score:    %d\n", out.Score)
			fmt.Fprintf(w, "priority: %d\n", out.Priority)
			fmt.Fprintf(w, "rules:    %s\n", strings.Join(out.Rules, ", "))
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "Read the assessment from this file instead of stdin")
	cmd.Flags().StringSlice("scarce", nil, "Resource types to treat as at or below their critical level")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

type scoreOutput struct {
	Category model.Category `json:"category"`
	Score    int            `json:"score"`
	Priority int            `json:"priority"`
	Rules    []string       `json:"rules"`
}

func score(a model.Assessment, lookup triage.ResourceLookup) scoreOutput {
	result := triage.Score(a)
	rules := triage.Explain(a)
	if rules == nil {
		rules = []string{}
	}
	return scoreOutput{
		Category: result.Category,
		Score:    result.Score,
		Priority: triage.Adjust(result, lookup),
		Rules:    rules,
	}
}

// scarcitySnapshot builds a registry where each named resource is out of stock.
func scarcitySnapshot(types []string) triage.Snapshot {
	resources := make([]*model.Resource, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		resources = append(resources, &model.Resource{
			ResourceType:  t,
			CurrentStock:  0,
			CriticalLevel: model.DefaultCriticalLevel,
		})
	}
	return triage.NewSnapshot(resources)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AurifyAE/Honor-TV-View/internal/config"
	"github.com/AurifyAE/Honor-TV-View/internal/db"
	"github.com/AurifyAE/Honor-TV-View/internal/logging"
	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/repository"
	"github.com/AurifyAE/Honor-TV-View/internal/spotrate"
)

// rateStore is the write side of the db config source.
// *repository.SpotRateRepo satisfies it.
type rateStore interface {
	Load(ctx context.Context, adminID string) (*models.SpotRateConfig, error)
	Save(ctx context.Context, cfg *models.SpotRateConfig) error
	Delete(ctx context.Context, adminID string) error
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage the spot-rate configuration stored in Postgres (CONFIG_SOURCE=db)",
}

var ratesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a YAML commodities file for an admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		admin, _ := cmd.Flags().GetString("admin")
		return withRateStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store rateStore) error {
			saved, err := importRates(ctx, store, file, admin, cfg.AdminID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d commodities for %s\n", len(saved.Commodities), saved.AdminID)
			return nil
		})
	},
}

var ratesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored configuration for an admin as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("admin")
		out, _ := cmd.Flags().GetString("out")
		return withRateStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store rateStore) error {
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return exportRates(ctx, store, firstNonEmpty(admin, cfg.AdminID), w)
		})
	},
}

var ratesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored configuration for an admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("admin")
		return withRateStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store rateStore) error {
			adminID := firstNonEmpty(admin, cfg.AdminID)
			if adminID == "" {
				return errors.New("--admin or ADMIN_ID is required")
			}
			return store.Delete(ctx, adminID)
		})
	},
}

func init() {
	ratesCmd.PersistentFlags().String("admin", "", "admin id (defaults to ADMIN_ID)")
	ratesImportCmd.Flags().String("file", "commodities.yaml", "YAML commodities file")
	ratesExportCmd.Flags().String("out", "", "write to a file instead of stdout")
	ratesCmd.AddCommand(ratesImportCmd, ratesExportCmd, ratesDeleteCmd)
}

func withRateStore(ctx context.Context, fn func(context.Context, *config.Config, rateStore) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	pool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("db connection failed: %w", err)
	}
	defer pool.Close()

	repo := repository.NewSpotRateRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(ctx, cfg, repo)
}

// importRates loads a YAML file and saves it. The admin id comes from the
// override, then the file, then the fallback.
func importRates(ctx context.Context, store rateStore, path, override, fallback string) (*models.SpotRateConfig, error) {
	cfg, err := spotrate.NewFileSource(path).Load(ctx, fallback)
	if err != nil {
		return nil, err
	}
	if override != "" {
		cfg.AdminID = override
	}
	if cfg.AdminID == "" {
		return nil, errors.New("no admin id: pass --admin, set adminId in the file or ADMIN_ID")
	}
	if err := store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	return cfg, nil
}

func exportRates(ctx context.Context, store rateStore, adminID string, w io.Writer) error {
	if adminID == "" {
		return errors.New("--admin or ADMIN_ID is required")
	}
	cfg, err := store.Load(ctx, adminID)
	if err != nil {
		return fmt.Errorf("load %s: %w", adminID, err)
	}
	data, err := spotrate.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"

	"bouquetStore/config"
	"bouquetStore/models"
	"bouquetStore/repository"
	"bouquetStore/services"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "bouquetctl",
		Short: "Administrative tasks for the bouquet shop backend",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("BOUQUET_CONFIG"), "path to a YAML config file")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(addUserCmd())
	rootCmd.AddCommand(repriceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	config.SetupLogger(cfg.Server.LogLevel)
	db, err := repository.OpenPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err = repository.Migrate(db); err != nil {
				return err
			}
			fmt.Println("schema is up to date")
			return nil
		},
	}
}

func addUserCmd() *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create a staff or admin account",
		Long: `Create an account directly in the database.

Examples:
  bouquetctl add-user --email florist@shop.id --password s3cretpass
  bouquetctl add-user --email owner@shop.id --password s3cretpass --role admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			uR, err := repository.NewUserRepository(db, cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			us := services.NewUserService(uR, nil, cfg.Auth)
			user, err := us.CreateUser(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Printf("created %s account %s (%s)\n", user.Role, user.Email, user.Id)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Name, "name", "", "display name")
	cmd.Flags().StringVar(&creds.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&creds.Role, "role", "staff", "account role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func repriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reprice",
		Short: "Recompute every product's base prices from the current material catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			mR, err := repository.NewMaterialRepository(db)
			if err != nil {
				return err
			}
			pR, err := repository.NewProductRepository(db)
			if err != nil {
				return err
			}
			ps := services.NewProductService(pR, services.NewPricingService(mR))
			updated, failed, err := ps.RepriceAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("repriced %d products\n", updated)

			ids := make([]string, 0, len(failed))
			for id := range failed {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Printf("  skipped %s: %v\n", id, failed[id])
			}
			return nil
		},
	}
}

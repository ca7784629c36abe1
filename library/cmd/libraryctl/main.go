// libraryctl is the admin companion to the library server: it loads a seed
// file straight into the store and prints catalog statistics, without going
// through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	stdLog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Opnex/Ai-Developer-Library/library/config"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/library/internal/repository"
	"github.com/Opnex/Ai-Developer-Library/library/internal/service"
	"github.com/Opnex/Ai-Developer-Library/library/internal/storage"
	"github.com/Opnex/Ai-Developer-Library/library/migrations"
	"github.com/Opnex/Ai-Developer-Library/pkg/db"
	"github.com/Opnex/Ai-Developer-Library/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, using process environment")
	}

	root := &cobra.Command{
		Use:          "libraryctl",
		Short:        "Admin tooling for the library lending service",
		SilenceUsage: true,
	}
	root.AddCommand(importCmd(), statsCmd(), eventsCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newService(ctx context.Context) (*service.Service, func(), error) {
	cfg := config.NewConfig()
	log := logger.NewLogger(cfg.Log, "libraryctl")

	database, err := db.NewDB(ctx, cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewSQLStore(database, log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	repo, err := repository.NewRepository(store, log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	svc, err := service.NewService(ctx, repo, nil, log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return svc, func() { database.Close() }, nil
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.json>",
		Short: "Load a seed dataset into the store (books overwrite, users merge)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var data model.SeedData
			if err := json.Unmarshal(raw, &data); err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, closeFn, err := newService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.ApplySeed(ctx, data); err != nil {
				return err
			}
			fmt.Printf("imported %d books, merged %d seed users\n", len(data.Books), len(data.Users))
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := newService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			stats := svc.Statistics()
			fmt.Printf("total books:     %d\n", stats.TotalBooks)
			fmt.Printf("available books: %d\n", stats.AvailableBooks)
			fmt.Printf("borrowed books:  %d\n", stats.BorrowedBooks)
			if stats.MostBorrowed != nil {
				fmt.Printf("most borrowed:   %s (%d borrows)\n", stats.MostBorrowed.Title, stats.MostBorrowed.BorrowCount)
			}
			return nil
		},
	}
}

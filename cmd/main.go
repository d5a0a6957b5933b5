package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/rental-server/app"
	"github.com/vnkhanh/rental-server/config"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

func main() {
	utils.InitLogger("rental-server")
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "rental-server",
		Short: "Room rental marketplace API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server and the overdue-invoice scheduler",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update database tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := config.ConnectDB(cfg)
				return err
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert demo users and rooms",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := config.ConnectDB(cfg)
				if err != nil {
					return err
				}
				return services.Seed(cmd.Context(), db)
			},
		},
		&cobra.Command{
			Use:   "token <username>",
			Short: "Print a JWT for a user (development)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := config.ConnectDB(cfg)
				if err != nil {
					return err
				}
				users := services.NewUserService(db)
				u, err := users.FindByUsername(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				token, err := users.IssueToken(u)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			},
		},
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func serve(cfg *config.Config) error {
	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}
	utils.Logger.WithFields(cfg.LogFields()).Info("integrations")

	a := app.New(app.DepsFromConfig(cfg, db))
	defer a.Close()
	scheduler, err := a.StartScheduler(cfg.OverdueCron)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Infof("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	utils.Logger.Info("shutting down")
	return srv.Shutdown(ctx)
}

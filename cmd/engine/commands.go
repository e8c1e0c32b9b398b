package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vagabot-engine/internal/pipeline"
	"vagabot-engine/internal/scheduler"
	"vagabot-engine/internal/secrets"
	"vagabot-engine/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Roda ciclos continuamente no intervalo configurado",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf("[engine] scheduling every %s", a.cfg.Interval())
		scheduler.Every(ctx, a.cfg.Interval(), "engine", func(ctx context.Context) error {
			_, err := a.engine.RunCycle(ctx)
			if errors.Is(err, pipeline.ErrCycleActive) {
				log.Printf("[engine] previous cycle still running, skipping tick")
				return nil
			}
			if err == nil {
				if _, err := store.CleanupOldListings(a.db.Pool); err != nil {
					log.Printf("[engine] snapshot cleanup: %v", err)
				}
			}
			return err
		})
		return nil
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Roda um único ciclo e sai",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.engine.RunCycle(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("cycle %s: %d delivered, %d failed, %d already sent\n",
			sum.CycleID, sum.Delivered, sum.Failed, sum.AlreadySent)
		return nil
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Guarda a senha IMAP no chaveiro do sistema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Email.Username == "" || cfg.Email.IMAPHost == "" {
			return errors.New("configure email.username and email.imap_host first")
		}

		account := secrets.IMAPAccount(cfg.Email.Username, cfg.Email.IMAPHost)
		fmt.Printf("Password for %s: ", account)
		reader := bufio.NewReader(os.Stdin)
		pw, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		if err := secrets.SetIMAPPassword(account, strings.TrimSpace(pw)); err != nil {
			return err
		}
		fmt.Println("saved")
		return nil
	},
}

package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dataDirFlag string

var rootCmd = &cobra.Command{
	Use:          "vagabot",
	Short:        "Coleta vagas em portais brasileiros e entrega as novas no chat",
	SilenceUsage: true,
}

func init() {
	// secrets like TELEGRAM_BOT_TOKEN usually live in a local .env
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default $VAGABOT_DATA_DIR or .)")
	rootCmd.AddCommand(runCmd, onceCmd, setPasswordCmd)
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

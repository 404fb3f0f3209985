package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var tuningFile string

var rootCmd = &cobra.Command{
	Use:   "asistencia",
	Short: "Face recognition attendance with entry/exit zone tracking",
	Long: `Asistencia identifies enrolled people in camera frames by comparing face
embeddings and records attendance events (ENTRADA / SALIDA).

Faces are detected by an external embedding server (EMBEDDING_URL). In zone
mode a person crossing from the door zone into an office zone, or back,
produces one event per crossing.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&tuningFile, "tuning", "", "YAML file overriding threshold, dedup window and zone settings (default $TUNING_FILE)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

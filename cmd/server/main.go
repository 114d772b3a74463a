package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/platewise/backend/config"
)

// offlineAnnotation marks commands that work on local files and need no
// credentials or config file.
const offlineAnnotation = "offline"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "platewise",
	Short: "Food lookup and meal scan backend",
	Long:  "Serves compact FoodData Central search results, normalized nutrient tables and meal photo ingredient scans for the PlateWise extension.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cmd.Annotations[offlineAnnotation]; ok {
			return config.InitLogger(config.LogConfig{Level: "warn", Format: "console"})
		}

		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

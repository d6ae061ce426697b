package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	prefsFile string
	rootCmd   = &cobra.Command{
		Use:   "driftpaper",
		Short: "DriftPaper - animated GPU wallpaper for every display",
		Long: `DriftPaper renders an animated line field as your desktop wallpaper:
a borderless, click-through window behind the desktop icons on every
display, with live-tunable colors, density and motion.

Run it bare for wallpaper mode, or with --windowed for a plain window.`,
		RunE: runRun,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&prefsFile, "config", "", "preferences file (default is $HOME/.config/driftpaper/preferences.json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("fps", 60, "target frames per second")
	rootCmd.PersistentFlags().Bool("windowed", false, "render in a normal window instead of as wallpaper")
	rootCmd.PersistentFlags().String("control-addr", "", "serve the control API on this address (e.g. 127.0.0.1:7420)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("fps", rootCmd.PersistentFlags().Lookup("fps"))
	viper.BindPFlag("windowed", rootCmd.PersistentFlags().Lookup("windowed"))
	viper.BindPFlag("control_addr", rootCmd.PersistentFlags().Lookup("control-addr"))
}

func initConfig() {
	viper.SetEnvPrefix("driftpaper")
	viper.AutomaticEnv()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

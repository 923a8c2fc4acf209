package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ayusman/handsnap/internal/config"
	"github.com/ayusman/handsnap/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI flags
var (
	configFlag    string
	logLevelFlag  string
	devFlag       bool
	outputDirFlag string
	cameraFlag    int
	addrFlag      string
	holdFlag      time.Duration
	headlessFlag  bool
	startFlag     bool
	limitFlag     int
)

var rootCmd = &cobra.Command{
	Use:   "handsnap",
	Short: "Take a photo by holding up two fingers",
	Long: `handsnap watches a webcam and takes a photo a few seconds after you
hold up two fingers (index and middle, thumb tucked). Release the gesture
before the next photo.

Examples:
  handsnap run
  handsnap run --headless --addr 127.0.0.1:9090
  handsnap run --hold 3s --output-dir ~/Pictures/handsnap
  handsnap photos --limit 10`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tray, preview server and capture loop",
	RunE:  runMain,
}

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "List captured photos, newest first",
	RunE:  runPhotos,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default ~/.handsnap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&devFlag, "dev", false, "Human-readable development logging")

	runCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory for captured photos")
	runCmd.Flags().IntVar(&cameraFlag, "camera", 0, "Camera device index")
	runCmd.Flags().StringVar(&addrFlag, "addr", "", "HTTP listen address")
	runCmd.Flags().DurationVar(&holdFlag, "hold", 0, "Countdown between gesture and photo")
	runCmd.Flags().BoolVar(&headlessFlag, "headless", false, "Run without the system tray")
	runCmd.Flags().BoolVar(&startFlag, "start", false, "Start the camera immediately")

	photosCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum photos to list (0 for all)")

	rootCmd.AddCommand(runCmd, photosCmd)
	rootCmd.RunE = runMain
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDirFlag
	}
	if flags.Changed("camera") {
		cfg.CameraID = cameraFlag
	}
	if flags.Changed("addr") {
		cfg.Addr = addrFlag
	}
	if flags.Changed("hold") {
		cfg.HoldDuration = holdFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, devFlag)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

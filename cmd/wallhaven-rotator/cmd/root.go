package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-wallhaven-rotator/internal/api"
	"go-wallhaven-rotator/internal/config"
	"go-wallhaven-rotator/internal/models"
)

// cfgFile holds the path to the config file specified by the user
var cfgFile string

// logLevel and logFormat configure logrus
var (
	logLevel  string
	logFormat string
)

// logApiFlag holds the value of the --log-api flag
var logApiFlag bool

// cacheDirFlag holds the value of the --cache-dir flag
var cacheDirFlag string

// globalConfig holds the loaded configuration
var globalConfig models.Config

// globalHttpTransport holds the globally configured HTTP transport (base or logging-wrapped)
var globalHttpTransport http.RoundTripper

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wallhaven-rotator",
	Short: "Rotate desktop wallpapers from Wallhaven and a saved collection",
	Long: `wallhaven-rotator picks the next desktop wallpaper either from your saved
collection or from a fresh Wallhaven search, and downloads wallpapers you
save into a local cache directory.`,
	PersistentPreRunE: loadGlobalConfig,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if loggingTransport, ok := globalHttpTransport.(*api.LoggingTransport); ok && loggingTransport != nil {
			log.Debug("Closing API logging transport file.")
			if err := loggingTransport.Close(); err != nil {
				log.WithError(err).Error("Error closing API log file")
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigPath, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Logging format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&logApiFlag, "log-api", false, "Log API requests/responses to api.log (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "Directory saved wallpapers are downloaded to (overrides config)")
	rootCmd.PersistentFlags().Bool("dark", false, "Treat the desktop as using a dark theme")
	rootCmd.PersistentFlags().String("executor", "", "Download executor: shell or native (overrides config)")

	_ = viper.BindPFlag("dark", rootCmd.PersistentFlags().Lookup("dark"))
	_ = viper.BindPFlag("executor", rootCmd.PersistentFlags().Lookup("executor"))
	viper.SetEnvPrefix("WALLHAVEN")
	viper.AutomaticEnv()
}

// initLogging configures logrus from the --log-level and --log-format flags.
func initLogging() {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.WithError(err).Warnf("Invalid log level '%s', using default 'info'", logLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	switch logFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		log.Warnf("Invalid log format '%s', using default 'text'", logFormat)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.Debugf("Logging configured: Level=%s, Format=%s", log.GetLevel(), logFormat)
}

// loadGlobalConfig loads the configuration, applies flag overrides and sets
// up the shared HTTP transport.
func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	initLogging()

	var err error
	globalConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("log-api") {
		globalConfig.LogApiRequests = logApiFlag
		log.Debugf("Overriding LogApiRequests based on --log-api flag: %t", logApiFlag)
	}
	if cmd.Flags().Changed("cache-dir") {
		globalConfig.CacheDir = cacheDirFlag
		log.Debugf("Overriding CacheDir based on --cache-dir flag: %s", cacheDirFlag)
	}
	if executor := viper.GetString("executor"); executor != "" {
		globalConfig.Executor = executor
		globalConfig = config.ApplyDefaults(globalConfig, func(...string) bool { return true })
	}

	globalHttpTransport = http.DefaultTransport
	if globalConfig.LogApiRequests {
		logFilePath := "api.log"
		if globalConfig.DatabasePath != "" {
			logFilePath = filepath.Join(filepath.Dir(globalConfig.DatabasePath), logFilePath)
		}
		log.Infof("API logging to file: %s", logFilePath)

		loggingTransport, err := api.NewLoggingTransport(http.DefaultTransport, logFilePath)
		if err != nil {
			log.WithError(err).Error("Failed to initialize API logging transport, logging disabled.")
		} else {
			globalHttpTransport = loggingTransport
		}
	}
	return nil
}

// Package cli wires the marque commands: catalogue mutations, search,
// undo, import/export, the vault and the interactive shell.
package cli

import (
	"time"

	"github.com/averin/marque/internal/config"
	"github.com/averin/marque/internal/logger"
	"github.com/averin/marque/pkg/fetch"
	"github.com/averin/marque/pkg/plugin"
	"github.com/averin/marque/pkg/store"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile  string
	dbPath   string
	logLevel string

	cfg       *config.Config
	appLogger *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marque",
	Short: "marque - personal bookmark catalogue",
	Long: `marque keeps bookmarks in a single sqlite file: tagged, full-text
searchable, and with an undo log covering every change. Records can be
imported and exported in several formats, and the whole database can be
locked into an encrypted vault.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	defer closeApp()
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/marque/config.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "bookmark database file (overrides the config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// initApp loads the configuration and the logger before any command
// runs. Flag overrides beat the config file.
func initApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	closeApp()
	appLogger, err = logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	return err
}

func closeApp() {
	if appLogger != nil {
		appLogger.Close()
		appLogger = nil
	}
}

// openStore opens the catalogue with the configured plugin hooks. The
// caller closes it.
func openStore() (*store.Store, error) {
	hooks, err := buildHooks()
	if err != nil {
		return nil, err
	}
	return store.New(store.Config{
		Path:   cfg.DB.Path,
		Logger: appLogger.GetZerolog(),
		Hooks:  hooks,
	})
}

// buildHooks assembles the plugin registry, or nothing when plugins
// are off.
func buildHooks() (store.Hooks, error) {
	if !cfg.Plugins.Enabled {
		return nil, nil
	}

	zl := appLogger.GetZerolog()
	registry, err := plugin.NewRegistry(plugin.Config{Enabled: true, Logger: zl})
	if err != nil {
		return nil, err
	}

	if cfg.Plugins.AutoTag {
		if err := registry.Register(plugin.AutoTag{}); err != nil {
			return nil, err
		}
	}

	scripts, err := plugin.LoadDirectory(cfg.Plugins.Dir, zl)
	if err != nil {
		return nil, err
	}
	for _, p := range scripts {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func newFetcher() *fetch.Fetcher {
	return fetch.New(fetch.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		Logger:    appLogger.GetZerolog(),
	})
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

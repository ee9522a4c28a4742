package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ajramos/labelsheet/internal/config"
	"github.com/ajramos/labelsheet/internal/db"
	"github.com/ajramos/labelsheet/internal/gmail"
	"github.com/ajramos/labelsheet/internal/services"
	"github.com/ajramos/labelsheet/internal/sheet"
	"github.com/ajramos/labelsheet/internal/trigger"
	"github.com/ajramos/labelsheet/internal/version"
	"github.com/ajramos/labelsheet/pkg/auth"
)

func main() {
	// Essential command line flags only (GNU-style double dashes)
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/labelsheet/config.json)")
	credPathFlag := flag.String("credentials", "", "Path to OAuth client credentials JSON (default: ~/.config/labelsheet/credentials.json)")
	setupFlag := flag.Bool("setup", false, "Run interactive setup wizard")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	// Override flag usage text to show clean, simple usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  sync                      Reconcile sheet rows with Gmail labels once\n")
		fmt.Fprintf(os.Stderr, "  open                      Run the on-open sync if auto-sync is enabled\n")
		fmt.Fprintf(os.Stderr, "  watch                     Poll the sheet for edits and apply them\n")
		fmt.Fprintf(os.Stderr, "  autosync on|off           Toggle sync-on-open\n")
		fmt.Fprintf(os.Stderr, "  edit --row N --old A --new B\n")
		fmt.Fprintf(os.Stderr, "                            Apply a single name-cell edit\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --config string\n        %s\n", "Path to JSON configuration file (default: ~/.config/labelsheet/config.json)")
		fmt.Fprintf(os.Stderr, "  --credentials string\n        %s\n", "Path to OAuth client credentials JSON (default: ~/.config/labelsheet/credentials.json)")
		fmt.Fprintf(os.Stderr, "  --setup\n        %s\n", "Run interactive setup wizard")
		fmt.Fprintf(os.Stderr, "  --version\n        %s\n\n", "Show version information and exit")
		fmt.Fprintf(os.Stderr, "Environment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LABELSHEET_CONFIG      Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  LABELSHEET_CREDENTIALS Override default credentials file path\n")
		fmt.Fprintf(os.Stderr, "  LABELSHEET_TOKEN       Override default token file path\n\n")
		fmt.Fprintf(os.Stderr, "For all other settings (spreadsheet layout, polling, etc.), edit the config file.\n")
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	// Handle setup mode
	if *setupFlag {
		runSetupWizard()
		return
	}

	command := flag.Arg(0)
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration with smart defaults and environment variable support
	configPath := getConfigPath(*configPathFlag)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Determine credential and token paths with smart defaults
	credPath := getCredentialsPath(*credPathFlag, cfg.Credentials)
	tokenPath := getTokenPath("", cfg.Token)

	if credPath == "" {
		log.Fatal("Google credentials file is required. Provide it via --credentials or config file.")
	}

	if _, err := os.Stat(credPath); err != nil {
		log.Fatalf("Credentials file not found at %s. Download client credentials from Google Cloud Console and place it there.", credPath)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Gmail service
	gmailSvc, err := auth.NewGmailService(ctx, credPath, tokenPath,
		"https://www.googleapis.com/auth/gmail.labels",
		"https://www.googleapis.com/auth/gmail.modify",
	)
	if err != nil {
		log.Fatalf("Could not initialize Gmail service: %v", err)
	}
	directory := gmail.NewClient(gmailSvc)

	// Initialize Sheets service
	sheetsSvc, err := auth.NewSheetsService(ctx, credPath, tokenPath,
		"https://www.googleapis.com/auth/spreadsheets",
	)
	if err != nil {
		log.Fatalf("Could not initialize Sheets service: %v", err)
	}
	rows, err := sheet.NewSheets(sheetsSvc, cfg.Layout())
	if err != nil {
		log.Fatalf("Could not open spreadsheet: %v", err)
	}

	// Local mirror and settings store
	store, err := db.Open(ctx, cfg.MirrorDB)
	if err != nil {
		log.Fatalf("Could not open mirror database: %v", err)
	}
	defer func() { _ = store.Close() }()
	mirror := db.NewRowStore(store)
	settings := db.NewSettingsStore(store)

	// Services
	reporter := services.NewLogReporter(logger)
	resolver := services.NewHierarchyResolver(directory, rows, logger)
	syncSvc := services.NewSyncService(directory, rows, resolver, logger)
	editor := services.NewRowEditService(directory, rows, resolver, reporter, logger)

	runner := trigger.NewRunner(syncSvc, reporter, settings, db.SettingAutoSync, logger)
	dispatcher := trigger.NewDispatcher(cfg.Spreadsheet.HeaderRows, sheet.ColumnNumber(cfg.Spreadsheet.NameColumn), editor, logger)
	watcher := trigger.NewWatcher(rows, mirror, dispatcher, cfg.GetWatchInterval(), logger)

	if err := runCommand(ctx, command, flag.Args()[1:], cfg, runner, dispatcher, watcher); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runCommand dispatches the chosen subcommand.
func runCommand(ctx context.Context, command string, args []string, cfg *config.Config, runner *trigger.Runner, dispatcher *trigger.Dispatcher, watcher *trigger.Watcher) error {
	switch command {
	case "sync":
		_, err := runner.RunSync(ctx)
		return err

	case "open":
		result, err := runner.OnOpen(ctx)
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("Auto-sync on open is disabled; nothing to do.")
		}
		return nil

	case "watch":
		err := watcher.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case "autosync":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: %s autosync on|off", os.Args[0])
		}
		enabled := args[0] == "on"
		if err := runner.SetAutoSync(ctx, enabled); err != nil {
			return err
		}
		fmt.Printf("Auto-sync on open: %s\n", args[0])
		return nil

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		row := fs.Int("row", 0, "1-based spreadsheet row of the edited cell")
		oldValue := fs.String("old", "", "Previous cell value")
		newValue := fs.String("new", "", "New cell value")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *row <= 0 {
			return fmt.Errorf("edit requires a positive --row")
		}
		ev := trigger.EditEvent{
			Row:      *row,
			Column:   sheet.ColumnNumber(cfg.Spreadsheet.NameColumn),
			OldValue: *oldValue,
			NewValue: *newValue,
		}
		return dispatcher.Dispatch(ctx, ev)

	default:
		return fmt.Errorf("unknown command %q (expected sync, open, watch, autosync or edit)", command)
	}
}

// newLogger builds the process logger honoring the log_file and debug settings.
func newLogger(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
			out = f
		} else {
			log.Printf("Warning: could not open log file %s: %v", cfg.LogFile, err)
		}
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable LABELSHEET_CONFIG
// 3. Default path ~/.config/labelsheet/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("LABELSHEET_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}

	return config.DefaultConfigPath()
}

// getCredentialsPath returns the credentials file path using the following priority:
// 1. CLI flag
// 2. Environment variable LABELSHEET_CREDENTIALS
// 3. Config file setting
// 4. Default path ~/.config/labelsheet/credentials.json
func getCredentialsPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("LABELSHEET_CREDENTIALS"); envPath != "" {
		return expandPath(envPath)
	}

	if configValue != "" {
		return expandPath(configValue)
	}

	credPath, _ := config.DefaultCredentialPaths()
	return credPath
}

// getTokenPath returns the token file path using the following priority:
// 1. CLI flag
// 2. Environment variable LABELSHEET_TOKEN
// 3. Config file setting
// 4. Default path ~/.config/labelsheet/token.json
func getTokenPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("LABELSHEET_TOKEN"); envPath != "" {
		return expandPath(envPath)
	}

	if configValue != "" {
		return expandPath(configValue)
	}

	_, tokenPath := config.DefaultCredentialPaths()
	return tokenPath
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}

// runSetupWizard walks the user through first-time configuration.
func runSetupWizard() {
	fmt.Println("labelsheet Setup Wizard")
	fmt.Println("=======================")
	fmt.Println()

	// Check if default config already exists
	defaultConfigPath := config.DefaultConfigPath()
	credPath, tokenPath := config.DefaultCredentialPaths()

	if _, err := os.Stat(defaultConfigPath); err == nil {
		fmt.Printf("Configuration file already exists: %s\n", defaultConfigPath)
	} else {
		fmt.Printf("Will create configuration file: %s\n", defaultConfigPath)
	}

	if _, err := os.Stat(credPath); err == nil {
		fmt.Printf("Credentials file found: %s\n", credPath)
	} else {
		fmt.Printf("Credentials file missing: %s\n", credPath)
		fmt.Println()
		fmt.Println("To set up Google API credentials:")
		fmt.Println("1. Go to https://console.cloud.google.com/")
		fmt.Println("2. Create a new project or select existing one")
		fmt.Println("3. Enable the Gmail API and the Google Sheets API")
		fmt.Println("4. Create OAuth 2.0 credentials (Desktop application)")
		fmt.Println("5. Download the JSON file and save it as:")
		fmt.Printf("   %s\n", credPath)
		fmt.Println()
	}

	if _, err := os.Stat(tokenPath); err == nil {
		fmt.Printf("Token file exists: %s\n", tokenPath)
	} else {
		fmt.Printf("Token will be created on first login: %s\n", tokenPath)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(defaultConfigPath); os.IsNotExist(err) {
		fmt.Println()
		fmt.Print("Create default configuration file? [Y/n]: ")

		var response string
		_, _ = fmt.Scanln(&response) // User input - error not actionable

		if response == "" || strings.ToLower(response) == "y" || strings.ToLower(response) == "yes" {
			cfg := config.DefaultConfig()
			if err := cfg.SaveConfig(defaultConfigPath); err != nil {
				fmt.Printf("Failed to create config file: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Created configuration file: %s\n", defaultConfigPath)
		}
	}

	fmt.Println()
	fmt.Println("Setup complete! Run a first reconciliation with:")
	fmt.Printf("   %s sync\n", os.Args[0])
	fmt.Println()
	fmt.Println("Tips:")
	fmt.Println("- Edit the config file to point at your spreadsheet")
	fmt.Println("- Use 'autosync on' to sync every time you run 'open'")
	fmt.Println("- Run with -h to see all options")
}

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jask/coursedesk/internal/api"
	"github.com/jask/coursedesk/internal/catalog"
	"github.com/jask/coursedesk/internal/config"
	"github.com/jask/coursedesk/internal/database"
	"github.com/jask/coursedesk/internal/database/repository"
	"github.com/jask/coursedesk/internal/logging"
	"github.com/jask/coursedesk/internal/navigator"
	"github.com/jask/coursedesk/internal/prefs"
	"github.com/jask/coursedesk/internal/secrets"
	"github.com/jask/coursedesk/internal/service"
	"github.com/jask/coursedesk/internal/session"
	"github.com/jask/coursedesk/internal/tui"
)

type flags struct {
	config      string
	baseURL     string
	verify      string
	noAltScreen bool
}

func main() {
	var f flags
	cmd := &cobra.Command{
		Use:          "coursedesk",
		Short:        "Terminal client for the course enrollment platform",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}
	cmd.PersistentFlags().StringVarP(&f.config, "config", "c", "", "path to config file (TOML)")
	cmd.Flags().StringVar(&f.baseURL, "api", "", "backend base URL")
	cmd.Flags().StringVar(&f.verify, "verify", "", "credential verification: none, hmac or introspect")
	cmd.Flags().BoolVar(&f.noAltScreen, "no-alt-screen", false, "render inline instead of the alternate screen")

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the saved session and local preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reset(cmd, f)
		},
	})

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(f flags) (config.Config, error) {
	for _, file := range []string{".env", ".env.local"} {
		_ = godotenv.Load(file)
	}
	if f.config != "" {
		os.Setenv("COURSEDESK_CONFIG", f.config)
	}
	return config.Load()
}

func reset(cmd *cobra.Command, f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	db, err := database.OpenMigrated(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer db.Close()

	m := &service.Maintenance{DB: db, PrefsPath: prefs.PathFor(cfg.Storage.Path)}
	if err := m.Reset(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("local state cleared")
	return nil
}

func run(cmd *cobra.Command, f flags) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api") {
		cfg.API.BaseURL = f.baseURL
	}
	if cmd.Flags().Changed("verify") {
		cfg.Auth.Verify = f.verify
	}
	if f.noAltScreen {
		cfg.UI.AltScreen = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, flush, err := logging.New(logging.Options{Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		return err
	}
	defer flush()

	db, err := database.OpenMigrated(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer db.Close()

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, log.Named("api"))
	vault := secrets.NewVault(repository.NewStateRepo(db), cfg.Storage.Passphrase)
	verifier, err := session.NewVerifier(cfg.Auth.Verify, cfg.Auth.Secret, client, log)
	if err != nil {
		return err
	}

	notices := tui.NewNoticeQueue()
	coord := &service.Coordinator{
		Session:  session.New(vault, client, verifier, log.Named("session")),
		Catalog:  catalog.New(client, log.Named("catalog")),
		Nav:      navigator.New(),
		Backend:  client,
		Reporter: notices,
		Log:      log,
	}
	log.Infow("starting", "api", cfg.API.BaseURL, "verify", cfg.Auth.Verify)

	var opts []tea.ProgramOption
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	app := tui.New(ctx, coord, notices, log.Named("tui")).WithPrefs(prefs.PathFor(cfg.Storage.Path))
	p := tea.NewProgram(app, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

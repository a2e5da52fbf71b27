// Package cli implements the interactive vault shell.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vibevault/vibevault/internal/config"
	"github.com/vibevault/vibevault/internal/filex"
	"github.com/vibevault/vibevault/internal/logging"
	"github.com/vibevault/vibevault/internal/repositories"
	"github.com/vibevault/vibevault/internal/services"
)

// App wires the services together and holds the session token for the
// duration of the shell.
type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    *repositories.Repositories
	session  *services.SessionService
	vault    *services.VaultService
	profiles *services.ProfileService
	devices  *services.DeviceService
	sync     *services.SyncService

	reader *bufio.Reader
	out    io.Writer
	token  string
}

// NewApp opens (and if needed creates) the vault database and builds the
// service graph.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, err
	}

	repos, err := repositories.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: slog.LevelWarn})))

	session := services.NewSessionService(repos.Users, repos.Records, logger)

	return &App{
		config:   cfg,
		logger:   logger,
		repos:    repos,
		session:  session,
		vault:    services.NewVaultService(session, repos.Records, logger),
		profiles: services.NewProfileService(session, repos.Profiles, logger),
		devices:  services.NewDeviceService(session, repos.Devices, logger),
		sync: services.NewSyncService(session, repos.DB, repos.Users,
			repos.SyncLog, repos.Devices, logger, cfg.MTU),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Close locks the vault and releases the database.
func (a *App) Close() error {
	a.session.Lock()
	return a.repos.Close()
}

func (a *App) isUnlocked() bool {
	return a.token != ""
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fail reports a command error to the user; expired sessions also clear
// the stale token so the prompt flips back to the locked state.
func (a *App) fail(err error) {
	a.println("Error:", err.Error())
}

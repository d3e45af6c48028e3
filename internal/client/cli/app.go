package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"shelfsync/internal/client/api"
	"shelfsync/internal/client/config"
	"shelfsync/internal/client/services"
	"shelfsync/internal/client/store"
	"shelfsync/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	session *services.Session
	sync    *services.SyncService
	store   *store.Store
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}
	st := store.New(db)

	apiClient, err := api.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	return &App{
		config:  c,
		session: services.NewSession(apiClient, st, log),
		sync:    services.NewSyncService(apiClient, st, log),
		store:   st,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

func (a *App) getStatus() string {
	if account := a.session.Account(); account != "" {
		return "(" + account + ")"
	}
	return ""
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/client/client"
	"github.com/dmitrijs2005/gymsession/internal/client/config"
	"github.com/dmitrijs2005/gymsession/internal/client/repositories/records"
	"github.com/dmitrijs2005/gymsession/internal/client/services"
	"github.com/dmitrijs2005/gymsession/internal/client/session"
	"github.com/dmitrijs2005/gymsession/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	manager services.SessionManager
	remote  pinger
	closers []io.Closer
	logger  logging.Logger

	reader *bufio.Reader
	out    io.Writer

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp opens the local database, builds the outbound client for the
// configured transport and wires the SessionManager on top of them.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		l.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	remote, err := newRemote(c, l)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	machine := session.NewMachine(remote)
	store := records.NewRecordStore(records.NewSQLiteRepository(db))
	manager := services.NewSessionManager(machine, store, remote, l)

	return &App{
		config:  c,
		manager: manager,
		remote:  remote,
		closers: []io.Closer{remote, dbCloser{db}},
		logger:  l.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     &syncWriter{w: os.Stdout},
	}, nil
}

func newRemote(c *config.Config, l logging.Logger) (client.Client, error) {
	auth := &client.Authorization{}
	switch c.Transport {
	case config.TransportGRPC:
		return client.NewGRPCClient(c.ServerAddr, c.RequestTimeout, auth, l)
	case config.TransportHTTP:
		return client.NewHTTPClient(c.ServerAddr, c.RequestTimeout, auth, l), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", c.Transport)
	}
}

// syncWriter serializes writes from the REPL and the transition printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run restores the stored session, starts the background watchers and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to gymsession (type 'help' for commands)")

	views, stop := a.manager.Subscribe()
	defer stop()
	go a.printTransitions(ctx, views)

	a.Restore(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader), a.out)
}

func (a *App) isLoggedIn() bool {
	return a.manager.Current().IsAuthenticated()
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getStatus() string {
	s := ""
	if v := a.manager.Current(); v.IsAuthenticated() {
		s = v.Profile.Name + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the server every interval and keeps Mode
// current until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.remote.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// printTransitions reports sign-in and sign-out until views is closed.
// Views can be coalesced, so only the edges between the observed states
// are printed.
func (a *App) printTransitions(ctx context.Context, views <-chan session.View) {
	prev := session.Unauthenticated
	for {
		select {
		case v, ok := <-views:
			if !ok {
				return
			}
			if line := describeTransition(prev, v); line != "" {
				fmt.Fprintln(a.out, line)
			}
			prev = v.State
		case <-ctx.Done():
			return
		}
	}
}

func describeTransition(prev session.State, v session.View) string {
	switch {
	case v.State == session.Authenticated && prev != session.Authenticated:
		return fmt.Sprintf("[session] signed in as %s <%s>", v.Profile.Name, v.Profile.Email)
	case v.State == session.Unauthenticated && prev == session.Authenticated:
		return "[session] signed out"
	default:
		return ""
	}
}

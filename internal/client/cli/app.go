package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/client"
	"github.com/dmitrijs2005/quickflip/internal/client/config"
	"github.com/dmitrijs2005/quickflip/internal/client/services"
	"github.com/dmitrijs2005/quickflip/internal/client/store"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/imaging"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

// chartMonths is how many months the chart command shows.
const chartMonths = 6

type App struct {
	session services.SessionService
	store   *store.Store
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
}

// NewApp opens the local database and wires the backend client, the item
// store and the session service.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(c.BackendURL, c.RequestTimeout, log)
	st := store.New(api, imaging.NewFileSource(c.ImageMaxWidth, c.ImageQuality), log)
	sess := services.NewSessionService(api, st, db, log)

	app := newApp(sess, st, bufio.NewReader(os.Stdin), os.Stdout, log)
	app.db = db
	return app, nil
}

func newApp(sess services.SessionService, st *store.Store, r *bufio.Reader, w io.Writer, log logging.Logger) *App {
	return &App{
		session: sess,
		store:   st,
		log:     log,
		reader:  r,
		out:     w,
		now:     time.Now,
	}
}

// Run restores the previous session, if any, and serves the REPL until exit
// or end of input.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	fmt.Fprintln(a.out, "Welcome to QuickFlip (type 'help' for commands)")
	if u, err := a.session.Restore(ctx); err == nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
		a.reportLoadError()
	} else if !errors.Is(err, common.ErrNotAuthenticated) {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) close() {
	a.store.Clear()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

func (a *App) getStatus() string {
	u := a.session.Current()
	if u == nil {
		return ""
	}
	s := u.Email
	if a.store.State().Loading {
		s += " busy"
	}
	return "(" + s + ")"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) fail(err error) error {
	a.printf("Error: %s\n", err)
	return err
}

// reportLoadError prints the error left by the last item load.
func (a *App) reportLoadError() {
	if err := a.store.State().Err; err != nil {
		a.printf("Could not load items: %s\n", err)
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/scrapsync/internal/config"
	"github.com/dmitrijs2005/scrapsync/internal/filex"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/services"
	"github.com/dmitrijs2005/scrapsync/internal/store"
	"github.com/dmitrijs2005/scrapsync/internal/syncer"
	"github.com/dmitrijs2005/scrapsync/internal/transport"
)

// App holds the state shared by the commands of one invocation.
type App struct {
	cfg       *config.Config
	in        io.Reader
	out       io.Writer
	lookupEnv config.LookupEnv
	analyzer  services.Analyzer

	// newTransport overrides the remote factory; nil uses the real backends.
	newTransport syncer.TransportFactory

	log         logging.Logger
	logCloser   io.Closer
	store       *store.Store
	unsubscribe func()

	scraps   services.ScrapService
	settings services.SettingsService
	engine   *syncer.Engine

	inShell bool
}

// Option customizes an App.
type Option func(*App)

// WithInput sets the reader used for text and import data from stdin.
func WithInput(r io.Reader) Option {
	return func(a *App) { a.in = r }
}

// WithOutput sets where command output goes.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithEnv replaces os.LookupEnv as the source of SCRAPS_* variables.
func WithEnv(lookup config.LookupEnv) Option {
	return func(a *App) { a.lookupEnv = lookup }
}

// WithAnalyzer enables "enrich" without manual fields.
func WithAnalyzer(an services.Analyzer) Option {
	return func(a *App) { a.analyzer = an }
}

func newApp(opts ...Option) *App {
	a := &App{in: os.Stdin, out: os.Stdout, lookupEnv: os.LookupEnv}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Execute loads the configuration for args and runs the matching command.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	a := newApp(opts...)
	defer a.Close()

	cfg, err := config.Load(args, a.lookupEnv)
	if err != nil {
		return err
	}
	a.cfg = cfg

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	return root.ExecuteContext(ctx)
}

// open builds the logger, the store and everything that depends on them.
// It is a no-op once the store is open.
func (a *App) open(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	if a.cfg.LogFile != "" {
		if err := filex.EnsureParentDir(a.cfg.LogFile); err != nil {
			return err
		}
	}
	log, closer := logging.New(logging.Options{
		File:   a.cfg.LogFile,
		Level:  a.cfg.LogLevel,
		Format: a.cfg.LogFormat,
	})
	a.log, a.logCloser = log, closer

	if err := filex.EnsureParentDir(a.cfg.DBPath); err != nil {
		return err
	}
	st, err := store.Open(ctx, a.cfg.DBPath, store.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	a.store = st
	a.unsubscribe = st.Subscribe(func(e store.Event) {
		a.log.Debug(context.Background(), "store changed", "event", string(e))
	})

	if a.newTransport == nil {
		a.newTransport = syncer.DefaultTransport(transport.Options{
			Timeout: a.cfg.RequestTimeout,
			Logger:  a.log,
		})
	}
	a.scraps = services.NewScrapService(st, a.analyzer, services.WithLogger(a.log))
	a.settings = services.NewSettingsService(st)
	a.engine = syncer.New(st, a.newTransport, a.log)
	return nil
}

// Close releases the store and the log file. It is safe to call twice.
func (a *App) Close() error {
	var err error
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
	return err
}

// StartAutoSync syncs every interval until ctx is done. Runs that overlap a
// manual sync are skipped by the engine.
func (a *App) StartAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := a.engine.Sync(ctx)
			if err != nil {
				a.log.Warn(ctx, "background sync failed", "error", err)
				continue
			}
			a.log.Info(ctx, "background sync", "outcome", res.Outcome)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

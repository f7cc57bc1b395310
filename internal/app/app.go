package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mcnotify/internal/config"
	"mcnotify/internal/console"
	"mcnotify/internal/eventbus"
	"mcnotify/internal/locale"
	"mcnotify/internal/notification"
	"mcnotify/internal/notification/guard"
	"mcnotify/internal/runtime/supervisor"
	"mcnotify/internal/session"
	"mcnotify/internal/storage"
	kit "mcnotify/internal/transport"
	tconsole "mcnotify/internal/transport/console"
	logx "mcnotify/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	catalog *locale.Catalog
	roster  *session.Roster
	writer  *tconsole.Writer
	engine  *notification.Engine
	guard   *guard.Guard
	unguard func()

	router *console.Router
	input  *tconsole.Input

	in  io.Reader
	out io.Writer

	updates chan kit.Update
}

type Option func(*App)

// WithIO replaces stdin/stdout for the console surface.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
	}
}

func NewApp(cfgPath string, opts ...Option) (*App, error) {
	a := &App{cfgPath: cfgPath, in: os.Stdin, out: os.Stdout}
	for _, o := range opts {
		o(a)
	}

	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	a.cfgm = cfgm

	logSvc, log := logx.New(mapLogConfig(cfg))
	a.logs = logSvc
	a.log = log.With(logx.String("comp", "app"))

	// Everything after the logger must close it on failure.
	ok := false
	defer func() {
		if !ok {
			if a.store != nil {
				_ = a.store.Close()
			}
			_ = logSvc.Close()
		}
	}()

	a.catalog, err = locale.Load(cfg.Locale.Dir, cfg.Locale.Tag)
	if err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}
	a.log.Info("locale selected", logx.String("tag", a.catalog.Tag().String()))

	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		a.store = st
		a.log.Info("storage enabled", logx.String("driver", sc.Driver))
	}

	a.bus = eventbus.New()
	a.roster = session.New()
	a.writer = tconsole.NewWriter(a.out, a.roster, tconsole.WriterConfig{
		Raw:        cfg.Console.Raw,
		Timestamps: cfg.Console.Timestamps,
	})

	engCfg, err := mapEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	deps := notification.Deps{
		Locale:     a.catalog,
		OptOut:     a.roster,
		Privileges: a.roster,
		Roster:     a.roster,
		Channels:   a.writer,
		Sink:       tconsole.NewLogSink(log.With(logx.String("comp", "admin_log"))),
		Sounds:     a.writer,
		Bus:        a.bus,
		Log:        log.With(logx.String("comp", "notification")),
	}
	if a.store != nil {
		deps.Audit = a.store
	}
	a.engine = notification.New(engCfg, deps)

	gcfg, err := mapGuardConfig(cfg)
	if err != nil {
		return nil, err
	}
	a.guard = guard.New(gcfg, log.With(logx.String("comp", "flood_guard")))
	a.unguard = a.engine.Gateway.Register("flood_guard", a.guard.Observe)

	timeout, err := mapCommandTimeout(cfg)
	if err != nil {
		return nil, err
	}
	a.router = console.NewRouter(console.NewIdentities(a.roster, a.writer), log.With(logx.String("comp", "commands")), timeout)
	env := console.Env{Engine: a.engine, Roster: a.roster}
	if a.store != nil {
		env.Audit = a.store
	}
	a.router.SetRegistry(console.Builtins(env))

	if cfg.Console.Enabled {
		a.input = tconsole.NewInput(a.in, log.With(logx.String("comp", "console")))
	}
	a.updates = make(chan kit.Update, 64)

	ok = true
	return a, nil
}

func (a *App) Engine() *notification.Engine { return a.engine }

func (a *App) Roster() *session.Roster { return a.roster }

func (a *App) Router() *console.Router { return a.router }

func (a *App) Guard() *guard.Guard { return a.guard }

// InputClosed is closed when console input reaches EOF. It never fires when
// the console is disabled.
func (a *App) InputClosed() <-chan struct{} {
	if a.input == nil {
		return nil
	}
	return a.input.EOF()
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		// mapping errors that config.Validate cannot see
		if _, err := mapEngineConfig(cfg); err != nil {
			return err
		}
		if _, err := mapGuardConfig(cfg); err != nil {
			return err
		}
		if _, _, err := mapStorageConfig(cfg); err != nil {
			return err
		}
		_, err := mapCommandTimeout(cfg)
		return err
	})

	// Debug trail of engine activity.
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.logEvent(e)
			}
		}
	})

	a.sup.Go("commands.dispatch", func(c context.Context) error {
		return a.router.DispatchLoop(c, a.updates)
	})
	if a.input != nil {
		if err := a.input.Start(a.sup.Context(), a.updates); err != nil {
			return err
		}
	}

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config in the channel.
			drain:
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						break drain
					}
				}
				a.applyConfig(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started", logx.Bool("console", a.input != nil))
	return nil
}

// Execute runs one console command line as the console sender.
func (a *App) Execute(ctx context.Context, line string) error {
	return a.router.Execute(ctx, line)
}

func (a *App) logEvent(e eventbus.Event) {
	if !a.log.Enabled(logx.LevelDebug) {
		return
	}
	fields := []logx.Field{logx.String("type", e.Type), logx.Time("time", e.Time)}
	if le, ok := e.Data.(notification.LifecycleEvent); ok {
		if le.Recipient != "" {
			fields = append(fields, logx.String("recipient", le.Recipient))
		}
		if le.Category != "" {
			fields = append(fields, logx.String("category", string(le.Category)))
		}
		if len(le.Channels) > 0 {
			chans := make([]string, len(le.Channels))
			for i, ch := range le.Channels {
				chans[i] = string(ch)
			}
			fields = append(fields, logx.String("channels", strings.Join(chans, ",")))
		}
		if le.Reason != "" {
			fields = append(fields, logx.String("reason", le.Reason))
		}
		if le.Count > 0 {
			fields = append(fields, logx.Int("count", le.Count))
		}
	}
	a.log.Debug("event", fields...)
}

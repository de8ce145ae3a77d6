package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vnkey/internal/config"
	"vnkey/internal/ime"
	"vnkey/internal/logging"
	"vnkey/internal/metrics"
	"vnkey/internal/store"
)

var (
	flushInterval time.Duration
	httpAddr      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine against standard input",
	Long: `Run the engine as a line-oriented front end: every line read from
standard input is typed as a new session and the result is written to
standard output.

The config file and the dictionaries are watched and reloaded when they
change. Macro usage is written to the store periodically and on exit.

With --http, engine metrics are served on /metrics and the dictionary
and store checks on /healthz.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(&flushInterval, "flush-interval", 30*time.Second, "how often macro usage is saved")
	runCmd.Flags().StringVar(&httpAddr, "http", "", "serve metrics and health on this address")
	rootCmd.AddCommand(runCmd)
}

// frontend ties an engine to its config loader, store and dictionary watcher.
type frontend struct {
	engine *ime.Engine
	store  *store.Store
	log    *logging.Logger

	mu          sync.Mutex
	stopWatch   context.CancelFunc
	watchDone   <-chan struct{}
	watchActive bool
}

func runRun(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, created, err := loader.LoadOrCreate()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()
	if created {
		log.Info("wrote default config", "path", loader.Path())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := metrics.NewRegistry("vnkey")
	e, report, err := newEngine(ctx, cfg, log, st, metrics.NewEngine(reg))
	if err != nil {
		return err
	}
	log.Info("engine ready", "dictionaries", report.String())

	if httpAddr != "" {
		checker := newChecker(cfg, e, st)
		checker.SetReady(true)
		go serveHTTP(ctx, httpAddr, newMux(checker, reg), log)
	}

	fe := &frontend{engine: e, store: st, log: log.WithComponent("frontend")}
	defer fe.stopWatching()
	if cfg.Dictionaries.Watch {
		fe.watch(ctx)
	}

	loader.OnChange(func(ch config.Change) { fe.reconfigure(ctx, ch) })
	loader.OnError(func(err error) { log.Warn("config reload failed", "error", err) })
	if err := loader.Watch(); err != nil {
		log.Warn("config watch unavailable", "path", loader.Path(), "error", err)
	}
	defer loader.Close()

	go fe.flushLoop(ctx)
	defer fe.flush(context.Background())

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	w := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			e.StartNewSession()
			fmt.Fprintln(w, e.Typist().TypeLine(line))
		}
	}
}

// reconfigure applies a reloaded config. Dictionaries are reloaded when
// their paths moved.
func (f *frontend) reconfigure(ctx context.Context, ch config.Change) {
	cfg := ch.Config
	if err := f.engine.ApplyConfig(cfg); err != nil {
		f.log.Warn("config rejected", "error", err)
		return
	}
	if cfg.Macros.Enabled {
		if table, err := f.store.MacroTable(ctx); err == nil {
			for k, v := range cfg.Macros.Entries {
				if _, ok := table[k]; !ok {
					table[k] = v
				}
			}
			f.engine.SetMacros(table)
		} else {
			f.log.Warn("load macros", "error", err)
		}
	}

	if ch.DictionariesMoved() {
		f.log.Info("dictionaries moved", "dictionaries", f.engine.LoadDictionaries().String())
	}

	f.stopWatching()
	if cfg.Dictionaries.Watch {
		f.watch(ctx)
	}
}

func (f *frontend) watch(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wctx, cancel := context.WithCancel(ctx)
	done, err := f.engine.WatchDictionaries(wctx)
	if err != nil {
		cancel()
		f.log.Warn("dictionary watch unavailable", "error", err)
		return
	}
	f.stopWatch = cancel
	f.watchDone = done
	f.watchActive = true
}

func (f *frontend) stopWatching() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.watchActive {
		return
	}
	f.stopWatch()
	<-f.watchDone
	f.watchActive = false
}

func (f *frontend) flushLoop(ctx context.Context) {
	if flushInterval <= 0 {
		return
	}
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.flush(ctx)
		}
	}
}

func (f *frontend) flush(ctx context.Context) {
	hits := f.engine.TakeMacroHits()
	if len(hits) == 0 {
		return
	}
	if err := f.store.RecordMacroHits(ctx, hits); err != nil {
		f.log.Warn("record macro hits", "error", err)
		return
	}
	f.log.Debug("macro usage saved", "macros", len(hits))
}

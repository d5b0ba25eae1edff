package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pacerlabs/pacer/bridge"
	"github.com/pacerlabs/pacer/config"
	"github.com/pacerlabs/pacer/engine"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		backend     = flag.String("backend", "", "Engine backend: mock or replay (overrides config)")
		session     = flag.String("session", "", "Session fixture for the replay backend (overrides config)")
		script      = flag.String("script", "", "Script to load")
		watches     = flag.String("watch", "", "Watches to register (name=0xADDR:type, comma-separated)")
		runFor      = flag.Duration("run", 3*time.Second, "How long to run in headless mode")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *session != "" {
		cfg.Session = *session
	}

	if *interactive {
		if err := runInteractive(cfg, *script); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *script == "" {
		fmt.Fprintln(os.Stderr, "Usage: pacer -script <file.resc> [-watch name=0xADDR:type,...] [-run 3s]")
		fmt.Fprintln(os.Stderr, "       pacer -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(cfg, *script, *watches, *runFor); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newEngine builds the configured backend. The bridge never learns which
// one it got.
func newEngine(cfg config.Config) (engine.Engine, error) {
	switch cfg.Backend {
	case "replay":
		session, err := engine.LoadSession(cfg.Session)
		if err != nil {
			return nil, err
		}
		return engine.NewReplay(session), nil
	default:
		return engine.NewMock(), nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// parseWatches parses the -watch flag: "pc=0x80001000:uint32,sp=0x2000:uint64".
func parseWatches(spec string) ([][3]string, error) {
	if spec == "" {
		return nil, nil
	}
	var out [][3]string
	for _, item := range strings.Split(spec, ",") {
		name, rest, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			return nil, fmt.Errorf("watch %q: want name=0xADDR:type", item)
		}
		addr, typ, ok := strings.Cut(rest, ":")
		if !ok {
			typ = "uint32"
		}
		out = append(out, [3]string{name, addr, typ})
	}
	return out, nil
}

func run(cfg config.Config, script, watchSpec string, runFor time.Duration) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	engine.SetLogger(logger.Named("engine"))

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	br, err := bridge.New(eng,
		bridge.WithLogger(logger.Named("bridge")),
		bridge.WithPollInterval(cfg.PollInterval),
		bridge.WithWorkers(cfg.Workers),
		bridge.WithCallTimeout(cfg.CallTimeout),
	)
	if err != nil {
		return err
	}
	defer br.Close()

	events := br.Subscribe(256)

	specs, err := parseWatches(watchSpec)
	if err != nil {
		return err
	}
	for _, w := range specs {
		typ, err := engine.ParseDataType(w[2])
		if err != nil {
			return err
		}
		if err := br.AddWatch(w[1], w[0], typ); err != nil {
			return err
		}
	}

	fmt.Printf("Backend: %s\n", cfg.Backend)
	fmt.Printf("Loading %s...\n", script)
	if err := br.RequestLoadScript(script); err != nil {
		return err
	}
	if err := waitState(events, bridge.StateLoaded); err != nil {
		return err
	}

	fmt.Println("Starting...")
	if err := br.RequestStart(); err != nil {
		return err
	}
	if err := waitState(events, bridge.StateRunning); err != nil {
		return err
	}

	fmt.Printf("Running for %s...\n", runFor)
	deadline := time.After(runFor)
drain:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break drain
			}
			switch ev := ev.(type) {
			case bridge.WatchUpdated:
				w := ev.Watch
				if w.Err != "" {
					fmt.Printf("  %s @ 0x%X: %s (last error: %s)\n", w.Name, w.Address, formatValue(w), w.Err)
				} else {
					fmt.Printf("  %s @ 0x%X: %s\n", w.Name, w.Address, formatValue(w))
				}
			case bridge.LogAppended:
				fmt.Printf("  [%s] %s\n", ev.Entry.Source, ev.Entry.Text)
			case bridge.StateChanged:
				if ev.New == bridge.StateError {
					return fmt.Errorf("engine failure: %w", ev.Err)
				}
			}
		case <-deadline:
			break drain
		}
	}

	fmt.Println("Resetting...")
	if err := br.RequestReset(); err != nil {
		return err
	}
	return waitState(events, bridge.StateIdle)
}

func formatValue(w bridge.WatchSnapshot) string {
	if w.Value == nil {
		return "n/a"
	}
	return w.Value.String()
}

func waitState(events <-chan bridge.Event, want bridge.State) error {
	timeout := time.After(30 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("bridge closed waiting for state %s", want)
			}
			if sc, isState := ev.(bridge.StateChanged); isState {
				if sc.New == want {
					return nil
				}
				if sc.New == bridge.StateError {
					return fmt.Errorf("engine failure: %w", sc.Err)
				}
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for state %s", want)
		}
	}
}

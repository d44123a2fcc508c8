// Command pulsein captures the timing of pulses on a single GPIO line
// and serves the captured history to an external controller over a
// command channel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/pulsein/internal/capture"
	"github.com/sweeney/pulsein/internal/command"
	"github.com/sweeney/pulsein/internal/config"
	"github.com/sweeney/pulsein/internal/history"
	"github.com/sweeney/pulsein/internal/line"
	"github.com/sweeney/pulsein/internal/msgq"
	"github.com/sweeney/pulsein/internal/status"
	"github.com/sweeney/pulsein/internal/web"
)

const version = "1.0.0"

// runConfig is the resolved startup configuration: flag defaults,
// overlaid with file values, overlaid with explicitly set flags.
type runConfig struct {
	chip        string
	offset      int
	activeLow   bool
	capacity    int
	timeoutUs   int64
	triggerUs   int64
	pulses      int
	coarseClock bool
	broker      string
	topicBase   string
	httpAddr    string
	printLevel  bool
}

func main() {
	cfg := runConfig{}
	flag.StringVar(&cfg.chip, "chip", "gpiochip0", "GPIO chip device name")
	flag.IntVar(&cfg.offset, "offset", -1, "GPIO line offset")
	flag.BoolVar(&cfg.activeLow, "active-low", false, "Line idles high; pulses are active-low")
	flag.IntVar(&cfg.capacity, "capacity", 64, "Pulse history capacity")
	flag.Int64Var(&cfg.timeoutUs, "timeout", 0, "Exit after this many microseconds with no edge (0 = never)")
	flag.Int64Var(&cfg.triggerUs, "trigger", 0, "Send an initial output pulse of this many microseconds")
	flag.IntVar(&cfg.pulses, "pulses", 0, "Exit after recording this many pulses (0 = no limit)")
	flag.BoolVar(&cfg.coarseClock, "coarse-clock", false, "Assume a coarse host clock; time pulses by calibrated loop ticks")
	flag.StringVar(&cfg.broker, "broker", "tcp://127.0.0.1:1883", "MQTT broker for the command channel")
	flag.StringVar(&cfg.topicBase, "topic", "pulsein", "Topic base for the command channel (<base>/cmd, <base>/reply, <base>/status)")
	flag.StringVar(&cfg.httpAddr, "http", "", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.printLevel, "print-level", false, "Read the line once, print its level, and exit")
	configPath := flag.String("config", "", "YAML configuration file")
	showVersion := flag.Bool("version", false, "Print the version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println("pulsein v" + version)
		return
	}

	if *configPath != "" {
		file, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		applyFile(&cfg, &file.Pulsein, setFlags(flag.CommandLine))
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// setFlags returns the names of the flags explicitly set on the
// command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFile overlays file values onto cfg for every flag the user did
// not set explicitly.
func applyFile(cfg *runConfig, file *config.PulseinConfig, set map[string]bool) {
	if !set["chip"] && file.Chip != "" {
		cfg.chip = file.Chip
	}
	if !set["offset"] && file.Offset != nil {
		cfg.offset = *file.Offset
	}
	if !set["active-low"] && file.ActiveLow {
		cfg.activeLow = true
	}
	if !set["capacity"] && file.Capacity > 0 {
		cfg.capacity = file.Capacity
	}
	if !set["timeout"] && file.TimeoutUs > 0 {
		cfg.timeoutUs = file.TimeoutUs
	}
	if !set["trigger"] && file.TriggerUs > 0 {
		cfg.triggerUs = file.TriggerUs
	}
	if !set["pulses"] && file.Pulses > 0 {
		cfg.pulses = file.Pulses
	}
	if !set["coarse-clock"] && file.CoarseClock {
		cfg.coarseClock = true
	}
	if !set["broker"] && file.Broker != "" {
		cfg.broker = file.Broker
	}
	if !set["topic"] && file.TopicBase != "" {
		cfg.topicBase = file.TopicBase
	}
	if !set["http"] && file.HTTPAddr != "" {
		cfg.httpAddr = file.HTTPAddr
	}
}

func run(cfg runConfig) error {
	if cfg.offset < 0 {
		return fmt.Errorf("a GPIO line offset must be specified (-offset)")
	}
	if cfg.capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", cfg.capacity)
	}

	l, err := line.Request(cfg.chip, cfg.offset)
	if err != nil {
		return fmt.Errorf("init line: %w", err)
	}
	defer l.Close()

	if cfg.printLevel {
		v, err := l.Value()
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		fmt.Println(v)
		return nil
	}

	if err := raisePriority(); err != nil {
		log.Printf("scheduling priority not raised: %v", err)
	}

	// Active-low means the line rests high between pulses.
	idleHigh := cfg.activeLow

	var clock capture.Clock
	if cfg.coarseClock {
		per, err := capture.ReadCost(l)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		log.Printf("calibrated read cost: %v", per)
		clock = capture.NewTickClock(per)
	} else {
		clock = capture.NewWallClock()
	}

	if cfg.triggerUs > 0 {
		log.Printf("triggering output for %d microseconds", cfg.triggerUs)
		if err := capture.Pulse(l, idleHigh, time.Duration(cfg.triggerUs)*time.Microsecond); err != nil {
			return fmt.Errorf("initial trigger: %w", err)
		}
	}

	hist := history.New(cfg.capacity)
	var histMu, lineMu sync.Mutex
	gate := capture.NewGate()

	engine := capture.NewEngine(capture.Config{
		IdleHigh:  idleHigh,
		Timeout:   time.Duration(cfg.timeoutUs) * time.Microsecond,
		MaxPulses: cfg.pulses,
	}, l, &lineMu, hist, &histMu, gate, clock)

	ch, err := msgq.Connect(cfg.broker, cfg.topicBase, "pulsein")
	if err != nil {
		return fmt.Errorf("init command channel: %w", err)
	}
	defer ch.Close()

	srv := command.New(ch, gate, hist, &histMu, l, &lineMu, idleHigh)

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        cfg.chip,
		Offset:      cfg.offset,
		ActiveLow:   cfg.activeLow,
		Capacity:    cfg.capacity,
		TimeoutUs:   cfg.timeoutUs,
		CoarseClock: cfg.coarseClock,
		Broker:      cfg.broker,
		TopicBase:   cfg.topicBase,
		HTTPAddr:    cfg.httpAddr,
	})
	tracker.SetMQTTConnected(ch.IsConnected())

	if err := ch.PublishStatus(status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", "")); err != nil {
		log.Printf("failed to publish startup status: %v", err)
	}

	if cfg.httpAddr != "" {
		websrv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := websrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer websrv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGCONT)
	defer signal.Stop(sigCh)

	log.Printf("started: line=%s:%d capacity=%d timeout=%dµs coarse=%v broker=%s topic=%s",
		cfg.chip, cfg.offset, cfg.capacity, cfg.timeoutUs, cfg.coarseClock, cfg.broker, cfg.topicBase)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return engine.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return watchSignals(ctx, sigCh, gate) })
	g.Go(func() error { refreshStatus(ctx, tracker, gate, engine, hist, &histMu, ch); return nil })

	err = g.Wait()

	reason := ""
	switch {
	case err == nil || errors.Is(err, context.Canceled):
		err = nil
	case errors.Is(err, capture.ErrSessionEnd):
		log.Printf("capture session ended")
		reason = "SESSION_END"
		err = nil
	case errors.Is(err, errInterrupted):
		log.Printf("shutting down: %v", err)
		reason = "INTERRUPT"
		err = nil
	}

	flush(os.Stdout, hist, &histMu)

	histMu.Lock()
	n := hist.Len()
	histMu.Unlock()
	tracker.Update(gate.Closed(), n, engine.Recorded())
	if perr := ch.PublishStatus(status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)); perr != nil {
		log.Printf("failed to publish shutdown status: %v", perr)
	}

	return err
}

// errInterrupted marks a shutdown requested by an interrupt signal.
var errInterrupted = errors.New("interrupted")

// watchSignals maps the stop/continue pair onto the pause gate and
// turns interrupts into a clean shutdown.
func watchSignals(ctx context.Context, sig <-chan os.Signal, gate *capture.Gate) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			switch s {
			case syscall.SIGTSTP:
				log.Printf("received %v, pausing capture", s)
				gate.Close()
			case syscall.SIGCONT:
				log.Printf("received %v, resuming capture", s)
				gate.Open()
			default:
				return fmt.Errorf("%w: received %v", errInterrupted, s)
			}
		}
	}
}

// refreshStatus mirrors capture state into the tracker once a second
// for the HTTP handlers.
func refreshStatus(ctx context.Context, tracker *status.Tracker, gate *capture.Gate, engine *capture.Engine, hist *history.Buffer, histMu *sync.Mutex, conn interface{ IsConnected() bool }) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			histMu.Lock()
			n := hist.Len()
			histMu.Unlock()
			tracker.Update(gate.Closed(), n, engine.Recorded())
			tracker.SetMQTTConnected(conn.IsConnected())
		}
	}
}

// flush writes the captured durations to w, oldest first, one per line.
func flush(w io.Writer, hist *history.Buffer, histMu *sync.Mutex) {
	histMu.Lock()
	vals := hist.Snapshot()
	histMu.Unlock()
	for _, v := range vals {
		fmt.Fprintln(w, v)
	}
}

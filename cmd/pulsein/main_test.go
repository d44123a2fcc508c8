package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/pulsein/internal/capture"
	"github.com/sweeney/pulsein/internal/config"
	"github.com/sweeney/pulsein/internal/history"
)

func TestApplyFileRespectsExplicitFlags(t *testing.T) {
	cfg := runConfig{
		chip:     "gpiochip0",
		offset:   -1,
		capacity: 64,
		broker:   "tcp://127.0.0.1:1883",
	}
	offset := 17
	file := config.PulseinConfig{
		Chip:      "gpiochip9",
		Offset:    &offset,
		ActiveLow: true,
		Capacity:  256,
		TimeoutUs: 5000,
		Broker:    "tcp://broker.local:1883",
		TopicBase: "bench/pulsein",
	}

	// -chip was set on the command line, everything else was not.
	applyFile(&cfg, &file, map[string]bool{"chip": true})

	if cfg.chip != "gpiochip0" {
		t.Errorf("chip = %q, explicit flag must win", cfg.chip)
	}
	if cfg.offset != 17 {
		t.Errorf("offset = %d, want 17 from file", cfg.offset)
	}
	if !cfg.activeLow {
		t.Error("activeLow should come from file")
	}
	if cfg.capacity != 256 {
		t.Errorf("capacity = %d, want 256 from file", cfg.capacity)
	}
	if cfg.timeoutUs != 5000 {
		t.Errorf("timeoutUs = %d, want 5000 from file", cfg.timeoutUs)
	}
	if cfg.broker != "tcp://broker.local:1883" {
		t.Errorf("broker = %q, want file value", cfg.broker)
	}
	if cfg.topicBase != "bench/pulsein" {
		t.Errorf("topicBase = %q, want file value", cfg.topicBase)
	}
}

func TestApplyFileEmptyFileKeepsDefaults(t *testing.T) {
	cfg := runConfig{chip: "gpiochip0", offset: 4, capacity: 64}
	applyFile(&cfg, &config.PulseinConfig{}, map[string]bool{})

	if cfg.chip != "gpiochip0" || cfg.offset != 4 || cfg.capacity != 64 {
		t.Errorf("empty file must not change defaults, got %+v", cfg)
	}
}

func TestFlushFormat(t *testing.T) {
	hist := history.New(8)
	hist.Append(100)
	hist.Append(150)
	var mu sync.Mutex

	var out bytes.Buffer
	flush(&out, hist, &mu)

	if out.String() != "100\n150\n" {
		t.Errorf("flush output = %q, want %q", out.String(), "100\n150\n")
	}

	if hist.Len() != 2 {
		t.Errorf("flush must not drain the buffer, len = %d", hist.Len())
	}
}

func TestFlushEmpty(t *testing.T) {
	var mu sync.Mutex
	var out bytes.Buffer
	flush(&out, history.New(4), &mu)
	if out.Len() != 0 {
		t.Errorf("flush of empty history wrote %q", out.String())
	}
}

func TestWatchSignalsPauseResumeInterrupt(t *testing.T) {
	gate := capture.NewGate()
	sig := make(chan os.Signal, 3)
	sig <- syscall.SIGTSTP
	sig <- syscall.SIGCONT
	sig <- syscall.SIGINT

	done := make(chan error, 1)
	go func() { done <- watchSignals(context.Background(), sig, gate) }()

	select {
	case err := <-done:
		if !errors.Is(err, errInterrupted) {
			t.Errorf("watchSignals = %v, want errInterrupted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchSignals did not return after SIGINT")
	}

	if gate.Closed() {
		t.Error("gate should be open after SIGCONT")
	}
}

func TestWatchSignalsStopsOnContextDone(t *testing.T) {
	gate := capture.NewGate()
	sig := make(chan os.Signal)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- watchSignals(ctx, sig, gate) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchSignals = %v, want nil on context done", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchSignals did not return after cancel")
	}
}

func TestRunRejectsMissingOffset(t *testing.T) {
	err := run(runConfig{chip: "gpiochip0", offset: -1, capacity: 64})
	if err == nil {
		t.Fatal("run without an offset should fail")
	}
}

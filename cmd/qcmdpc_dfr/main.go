// Command qcmdpc_dfr estimates the decoding failure rate of a QC-MDPC
// bit-flipping decoder. It prints the parameter line, then the statistics
// line every period, on SIGHUP and at exit. SIGINT and SIGTERM finish the
// trials in flight and exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/internal/report"
	"github.com/qcmdpc/qcmdpc-dfr/internal/status"
)

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			fatalf("cpuprofile: %v", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fatalf("cpuprofile: %v", err)
		}
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := run(context.Background(), opts, os.Stdout, sigs); err != nil {
		pprof.StopCPUProfile()
		fatalf("%v", err)
	}
}

func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// run drives one estimation. Results go to out; sigs may be nil.
func run(ctx context.Context, opts options, out io.Writer, sigs <-chan os.Signal) error {
	line, hopts, err := opts.build()
	if err != nil {
		return err
	}
	log := newLogger(opts.Quiet)
	hopts.Logger = log
	fmt.Fprintln(out, line.String())

	if opts.Resume && opts.Checkpoint != "" {
		base, err := harness.ReadCheckpoint(opts.Checkpoint, line.String())
		switch {
		case err == nil:
			hopts.Base = base
			log.Info("resuming", "tests", base.Tests, "failures", base.Failures())
		case errors.Is(err, os.ErrNotExist):
		default:
			return err
		}
	}

	runner, err := harness.NewRunner(hopts)
	if err != nil {
		return err
	}
	log.Info("run", "id", line.RunID(), "seed", runner.Options().Seed)

	var jsonl *report.JSONLWriter
	if opts.JSONL != "" {
		f, err := os.OpenFile(opts.JSONL, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		jsonl = report.NewJSONLWriter(f)
	}
	emit := func() {
		s := runner.Snapshot()
		fmt.Fprintln(out, s.String())
		if jsonl != nil {
			if err := jsonl.Write(report.NewRecord(line, s, runner.Elapsed(), time.Now())); err != nil {
				log.Warn("jsonl", "err", err)
			}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var srv *status.Server
	srvDone := make(chan error, 1)
	if opts.MetricsAddr != "" || opts.GRPCAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := runner.Register(reg, prometheus.Labels{"run": line.RunID()}); err != nil {
			return err
		}
		srv = status.New(line, runner, reg, log)
		if opts.StatusTLS {
			cfg, err := status.SelfSignedTLS("localhost")
			if err != nil {
				return err
			}
			srv.UseTLS(cfg)
		}
		srv.SetServing(true)
		go func() { srvDone <- srv.Serve(ctx, opts.MetricsAddr, opts.GRPCAddr) }()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		watch(ctx, runner, opts, sigs, emit)
	}()

	runErr := runner.Run(ctx)
	cancel()
	<-done
	emit()

	if srv != nil {
		srv.SetServing(false)
		if err := <-srvDone; err != nil {
			log.Warn("status server", "err", err)
		}
	}
	if err := writeOutputs(opts, line, runner.Snapshot()); err != nil {
		return err
	}
	return runErr
}

// watch prints the statistics periodically and on SIGHUP, and stops the
// runner on SIGINT or SIGTERM, until ctx is done.
func watch(ctx context.Context, runner *harness.Runner, opts options, sigs <-chan os.Signal, emit func()) {
	var tick <-chan time.Time
	if !opts.Quiet && opts.Every > 0 {
		t := time.NewTicker(opts.Every)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			emit()
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				emit()
				continue
			}
			runner.Stop()
		}
	}
}

func writeOutputs(opts options, line paramline.Line, s harness.Stats) error {
	if opts.Checkpoint != "" {
		if err := harness.WriteCheckpoint(opts.Checkpoint, harness.NewCheckpoint(line.String(), s)); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	if opts.CSV != "" {
		if err := writeFile(opts.CSV, func(w io.Writer) error { return report.WriteCSV(w, s, opts.Alpha) }); err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}
	if opts.HTML != "" {
		title := fmt.Sprintf("%s r=%d w=%d t=%d", line.Decoder.Algo, line.Decoder.BlockLength, line.Decoder.BlockWeight, line.Decoder.ErrorWeight)
		if err := writeFile(opts.HTML, func(w io.Writer) error { return report.WriteChart(w, title, s, opts.Alpha) }); err != nil {
			return fmt.Errorf("html: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

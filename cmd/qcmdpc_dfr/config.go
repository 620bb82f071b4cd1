package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/dfrstat"
	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/internal/prng"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

// options is everything the estimator can be told, from a YAML file, the
// command line or both. Flags given explicitly win over the file.
type options struct {
	Config string `yaml:"-"`

	Preset      string `yaml:"preset"`
	BlockLength int    `yaml:"block_length"`
	BlockWeight int    `yaml:"block_weight"`
	ErrorWeight int    `yaml:"error_weight"`
	Ouroboros   bool   `yaml:"ouroboros"`
	Algo        string `yaml:"algo"`
	Kernel      string `yaml:"kernel"`

	ThresholdC0 float64 `yaml:"threshold_c0"`
	ThresholdC1 float64 `yaml:"threshold_c1"`
	TTLC0       float64 `yaml:"ttl_c0"`
	TTLC1       float64 `yaml:"ttl_c1"`
	TTLSaturate int     `yaml:"ttl_saturate"`
	GraySize    int     `yaml:"gray_size"`
	BPScale     float64 `yaml:"bp_scale"`
	BPSaturate  float64 `yaml:"bp_saturate"`

	Weak   int `yaml:"weak"`
	WeakP  int `yaml:"weak_p"`
	Floor  int `yaml:"error_floor"`
	FloorP int `yaml:"error_floor_p"`

	MaxIter int           `yaml:"max_iter"`
	Rounds  int64         `yaml:"rounds"`
	Threads int           `yaml:"threads"`
	Seed    string        `yaml:"seed"`
	Quiet   bool          `yaml:"quiet"`
	Every   time.Duration `yaml:"print_every"`

	JSONL      string  `yaml:"jsonl"`
	CSV        string  `yaml:"csv"`
	HTML       string  `yaml:"html"`
	Alpha      float64 `yaml:"alpha"`
	Checkpoint string  `yaml:"checkpoint"`
	Resume     bool    `yaml:"resume"`

	MetricsAddr string `yaml:"metrics_addr"`
	GRPCAddr    string `yaml:"grpc_addr"`
	StatusTLS   bool   `yaml:"status_tls"`
	CPUProfile  string `yaml:"cpuprofile"`
}

func defaultOptions() options {
	return options{
		MaxIter: 100,
		Rounds:  -1,
		Every:   60 * time.Second,
		Alpha:   dfrstat.DefaultAlpha,
	}
}

func newFlagSet(o *options, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("qcmdpc_dfr", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.Config, "config", o.Config, "YAML configuration file; flags override its values")

	fs.StringVar(&o.Preset, "preset", o.Preset, fmt.Sprintf("parameter set %v (default %s)", mdpc.PresetNames(), mdpc.DefaultPreset))
	fs.IntVar(&o.BlockLength, "r", o.BlockLength, "block length, overrides the preset")
	fs.IntVar(&o.BlockWeight, "w", o.BlockWeight, "block weight, overrides the preset")
	fs.IntVar(&o.ErrorWeight, "t", o.ErrorWeight, "error weight, overrides the preset")
	fs.BoolVar(&o.Ouroboros, "ouroboros", o.Ouroboros, "add a syndrome error of weight t/2")
	fs.StringVar(&o.Algo, "algo", o.Algo, fmt.Sprintf("decoder (default %s)", mdpc.DefaultAlgo))
	fs.StringVar(&o.Kernel, "kernel", o.Kernel, "auto|scalar|wide")

	fs.Float64Var(&o.ThresholdC0, "threshold-c0", o.ThresholdC0, "affine threshold constant (gray decoders)")
	fs.Float64Var(&o.ThresholdC1, "threshold-c1", o.ThresholdC1, "affine threshold slope (gray decoders)")
	fs.Float64Var(&o.TTLC0, "ttl-c0", o.TTLC0, "time-to-live constant (BACKFLIP)")
	fs.Float64Var(&o.TTLC1, "ttl-c1", o.TTLC1, "time-to-live slope (BACKFLIP)")
	fs.IntVar(&o.TTLSaturate, "ttl-saturate", o.TTLSaturate, "largest time-to-live")
	fs.IntVar(&o.GraySize, "gray-size", o.GraySize, "candidate list length (SORT)")
	fs.Float64Var(&o.BPScale, "bp-scale", o.BPScale, "check message scale (BP)")
	fs.Float64Var(&o.BPSaturate, "bp-saturate", o.BPSaturate, "message clamp (BP)")

	fs.IntVar(&o.Weak, "weak", o.Weak, "weak keys: 0 none, 1-3 type")
	fs.IntVar(&o.WeakP, "weak-p", o.WeakP, "weak key parameter")
	fs.IntVar(&o.Floor, "error-floor", o.Floor, "errors: 0 uniform, 1 near-codeword, 2 near-codeword2, 3 codeword")
	fs.IntVar(&o.FloorP, "error-floor-p", o.FloorP, "intersections with the (near-)codeword")

	fs.IntVar(&o.MaxIter, "i", o.MaxIter, "maximum iterations")
	fs.IntVar(&o.MaxIter, "max-iter", o.MaxIter, "maximum iterations")
	fs.Int64Var(&o.Rounds, "N", o.Rounds, "number of trials, -1 for unlimited")
	fs.Int64Var(&o.Rounds, "rounds", o.Rounds, "number of trials, -1 for unlimited")
	fs.IntVar(&o.Threads, "T", o.Threads, "worker threads (default number of CPUs)")
	fs.IntVar(&o.Threads, "threads", o.Threads, "worker threads (default number of CPUs)")
	fs.StringVar(&o.Seed, "seed", o.Seed, "64 hex digits or a passphrase; empty draws a fresh seed")
	fs.BoolVar(&o.Quiet, "q", o.Quiet, "print statistics only at exit")
	fs.BoolVar(&o.Quiet, "quiet", o.Quiet, "print statistics only at exit")
	fs.DurationVar(&o.Every, "every", o.Every, "statistics period")

	fs.StringVar(&o.JSONL, "jsonl", o.JSONL, "append JSON line records to this file")
	fs.StringVar(&o.CSV, "csv", o.CSV, "write the per-iteration DFR table to this file at exit")
	fs.StringVar(&o.HTML, "html", o.HTML, "write a DFR chart to this file at exit")
	fs.Float64Var(&o.Alpha, "alpha", o.Alpha, "significance of the confidence intervals")
	fs.StringVar(&o.Checkpoint, "checkpoint", o.Checkpoint, "write a checkpoint to this file at exit")
	fs.BoolVar(&o.Resume, "resume", o.Resume, "start from the checkpoint file if it exists")

	fs.StringVar(&o.MetricsAddr, "metrics-addr", o.MetricsAddr, "serve /metrics and /stats on this address")
	fs.StringVar(&o.GRPCAddr, "grpc-addr", o.GRPCAddr, "serve gRPC health on this address, with or without -metrics-addr")
	fs.BoolVar(&o.StatusTLS, "status-tls", o.StatusTLS, "serve the status endpoints over TLS with a self-signed certificate")
	fs.StringVar(&o.CPUProfile, "cpuprofile", o.CPUProfile, "write CPU profile to file")
	return fs
}

// parseOptions reads args, then the YAML file named by -config if any, then
// args again so that explicit flags override the file.
func parseOptions(args []string, out io.Writer) (options, error) {
	o := defaultOptions()
	if err := newFlagSet(&o, out).Parse(args); err != nil {
		return options{}, err
	}
	if o.Config == "" {
		return o, nil
	}
	fromFile := defaultOptions()
	if err := loadYAML(o.Config, &fromFile); err != nil {
		return options{}, err
	}
	if err := newFlagSet(&fromFile, out).Parse(args); err != nil {
		return options{}, err
	}
	return fromFile, nil
}

func loadYAML(path string, o *options) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(o); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (o *options) params() (mdpc.Params, error) {
	name := o.Preset
	if name == "" {
		name = mdpc.DefaultPreset
	}
	p, err := mdpc.LookupPreset(name)
	if err != nil {
		return mdpc.Params{}, err
	}
	if o.BlockLength != 0 {
		p.BlockLength = o.BlockLength
	}
	if o.BlockWeight != 0 {
		p.BlockWeight = o.BlockWeight
	}
	if o.ErrorWeight != 0 {
		p.ErrorWeight = o.ErrorWeight
	}
	p.Ouroboros = p.Ouroboros || o.Ouroboros
	return p, p.Validate()
}

// build resolves the options into the parameter line of the run and the
// runner options.
func (o *options) build() (paramline.Line, harness.Options, error) {
	p, err := o.params()
	if err != nil {
		return paramline.Line{}, harness.Options{}, err
	}
	cfg := mdpc.Config{
		Params:      p,
		Algo:        mdpc.DefaultAlgo,
		ThresholdC0: o.ThresholdC0,
		ThresholdC1: o.ThresholdC1,
		TTLC0:       o.TTLC0,
		TTLC1:       o.TTLC1,
		TTLSaturate: o.TTLSaturate,
		GraySize:    o.GraySize,
		BPScale:     o.BPScale,
		BPSaturate:  o.BPSaturate,
	}
	if o.Algo != "" {
		if cfg.Algo, err = mdpc.ParseAlgo(o.Algo); err != nil {
			return paramline.Line{}, harness.Options{}, err
		}
	}
	if cfg.Kernel, err = mdpc.ParseKernel(o.Kernel); err != nil {
		return paramline.Line{}, harness.Options{}, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return paramline.Line{}, harness.Options{}, err
	}

	seed, err := prng.ParseSeed(o.Seed)
	if err != nil {
		return paramline.Line{}, harness.Options{}, err
	}
	line := paramline.Line{
		Decoder: cfg,
		Weak:    gen.WeakKind(o.Weak),
		WeakP:   o.WeakP,
		Floor:   gen.FloorKind(o.Floor),
		FloorP:  o.FloorP,
	}
	hopts := harness.Options{
		Decoder: cfg,
		MaxIter: o.MaxIter,
		Rounds:  o.Rounds,
		Workers: o.Threads,
		Seed:    seed,
		Weak:    line.Weak,
		WeakP:   line.WeakP,
		Floor:   line.Floor,
		FloorP:  line.FloorP,
	}
	return line, hopts, nil
}

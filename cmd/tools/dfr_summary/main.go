// Command dfr_summary prints the parameters of results files and the
// failure rate by iteration with confidence intervals, in log2.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/dfrstat"
	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/internal/report"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

func main() {
	var (
		alpha = flag.Float64("alpha", dfrstat.DefaultAlpha, "significance of the confidence intervals")
		html  = flag.String("html", "", "also write a chart of the first file to this path")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] results...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for i, path := range flag.Args() {
		l, s, err := report.LoadFile(path)
		if err != nil {
			w.Flush()
			fatalf("%v", err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%-13s: %s\n", "file", path)
		summarize(w, l, s, *alpha)

		if i == 0 && *html != "" {
			f, err := os.Create(*html)
			if err != nil {
				fatalf("create %s: %v", *html, err)
			}
			title := fmt.Sprintf("%s r=%d w=%d t=%d", l.Decoder.Algo, l.Decoder.BlockLength, l.Decoder.BlockWeight, l.Decoder.ErrorWeight)
			if err := report.WriteChart(f, title, s, *alpha); err != nil {
				fatalf("render %s: %v", *html, err)
			}
			_ = f.Close()
		}
	}
}

type kv struct {
	key string
	val any
}

func algoParams(c mdpc.Config) []kv {
	switch c.Algo {
	case mdpc.BP:
		return []kv{{"bp_scale", c.BPScale}, {"bp_saturate", c.BPSaturate}}
	case mdpc.GrayB, mdpc.GrayBGF, mdpc.GrayBGB, mdpc.GrayBG:
		return []kv{{"threshold_c0", c.ThresholdC0}, {"threshold_c1", c.ThresholdC1}}
	case mdpc.Backflip2:
		out := make([]kv, 0, 6)
		for i, a := range c.Alphas {
			out = append(out, kv{fmt.Sprintf("threshold_a%d", i), a})
		}
		return append(out, kv{"ttl_saturate", c.TTLSaturate})
	case mdpc.Backflip:
		return []kv{{"ttl_c0", c.TTLC0}, {"ttl_c1", c.TTLC1}, {"ttl_saturate", c.TTLSaturate}}
	case mdpc.Sort:
		return []kv{{"gray_size", c.GraySize}}
	}
	return nil
}

func summarize(w io.Writer, l paramline.Line, s harness.Stats, alpha float64) {
	c := l.Decoder
	rows := []kv{
		{"index", mdpc.Index},
		{"block_length", c.BlockLength},
		{"block_weight", c.BlockWeight},
		{"error_weight", c.ErrorWeight},
		{"algo", c.Algo},
	}
	if c.Ouroboros {
		rows = append(rows, kv{"ouroboros", 1})
	}
	rows = append(rows, algoParams(c)...)
	if l.Weak != gen.WeakNone {
		rows = append(rows, kv{"weak", l.Weak}, kv{"weak_p", l.WeakP})
	}
	if l.Floor != gen.FloorNone {
		rows = append(rows, kv{"error_floor", l.Floor}, kv{"error_floor_p", l.FloorP})
	}
	density, distance := dfrstat.Density(l)
	if density != 0 {
		rows = append(rows, kv{"density", fmt.Sprintf("%.3f", density)})
	}
	if distance != 0 {
		rows = append(rows, kv{"distance", distance})
	}
	rows = append(rows, kv{"tests", s.Tests}, kv{"failures", s.Failures()})
	for _, r := range rows {
		fmt.Fprintf(w, "%-13s: %v\n", r.key, r.val)
	}

	pts := dfrstat.Curve(s, alpha)
	fmt.Fprintf(w, "%-13s:\n", "dfr (with CI)")
	for _, p := range pts {
		fmt.Fprintf(w, "%16d: %.3f %.3f %.3f\n", p.Iter, p.Lower, p.Log2, p.Upper)
	}
	if density != 0 {
		fmt.Fprintf(w, "%-13s:\n", "dfr+density (with CI)")
		for _, p := range pts {
			p = p.Shift(density)
			fmt.Fprintf(w, "%16d: %.3f %.3f %.3f\n", p.Iter, p.Lower, p.Log2, p.Upper)
		}
	}
}

func fatalf(f string, a ...any) { fmt.Fprintf(os.Stderr, f+"\n", a...); os.Exit(1) }

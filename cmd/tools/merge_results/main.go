// Command merge_results sums the statistics of results files that share a
// parameter line and writes one results file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/internal/report"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path (default stdout)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] results...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	line, total, err := merge(flag.Args())
	if err != nil {
		fatalf("%v", err)
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		tmp := outPath + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			fatalf("create %s: %v", tmp, err)
		}
		write(f, line, total)
		if err := f.Close(); err != nil {
			fatalf("close %s: %v", tmp, err)
		}
		if err := os.Rename(tmp, outPath); err != nil {
			fatalf("rename %s -> %s: %v", tmp, outPath, err)
		}
		fmt.Fprintf(os.Stderr, "merged %d files (%d tests) into %s\n", flag.NArg(), total.Tests, outPath)
		return
	}
	write(w, line, total)
}

// merge loads every file and sums the statistics. All files must carry
// the same parameter line.
func merge(paths []string) (paramline.Line, harness.Stats, error) {
	var (
		line  paramline.Line
		id    string
		total harness.Stats
	)
	for i, path := range paths {
		l, s, err := report.LoadFile(path)
		if err != nil {
			return paramline.Line{}, harness.Stats{}, err
		}
		if i == 0 {
			line, id = l, l.RunID()
		} else if l.RunID() != id {
			return paramline.Line{}, harness.Stats{}, fmt.Errorf("%s: parameters differ from %s", path, paths[0])
		}
		total.Merge(s)
	}
	return line, total, nil
}

func write(w io.Writer, l paramline.Line, s harness.Stats) {
	fmt.Fprintln(w, l.String())
	fmt.Fprintln(w, s.String())
}

func fatalf(f string, a ...any) { fmt.Fprintf(os.Stderr, f+"\n", a...); os.Exit(1) }

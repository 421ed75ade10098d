// Command fortio inspects Fortran unformatted sequential files.
//
// Usage:
//
//	fortio --records fort.10
//
// With --records it prints the payload length of every record as a tuple,
// for example (4, 0, 16). Errors are logged to stderr as JSON lines.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davidvella/fortio/monitoring"
	"github.com/davidvella/fortio/recordio"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fortio", flag.ContinueOnError)
	fs.SetOutput(stderr)
	records := fs.Bool("records", false, "List record lengths")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: fortio [--records] filename")
		fs.PrintDefaults()
	}

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if len(positional) != 1 {
		fmt.Fprintln(stderr, "fortio: expected exactly one filename")
		fs.Usage()
		return exitUsage
	}

	if !*records {
		return exitOK
	}

	logger := monitoring.NewLogger("fortio", stderr, monitoring.INFO)
	name := positional[0]

	lengths, err := recordLengths(name, logger)
	if err != nil {
		logger.Log(monitoring.ERROR, "records_failed", err.Error(), map[string]any{
			"file": name,
		})
		return exitError
	}

	fmt.Fprintln(stdout, formatTuple(lengths))
	return exitOK
}

// parseInterspersed allows flags after the filename.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func recordLengths(name string, logger monitoring.Logger) ([]int, error) {
	r, err := recordio.Open(name, recordio.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.RecordLengths()
}

func formatTuple(values []int) string {
	if len(values) == 1 {
		return "(" + strconv.Itoa(values[0]) + ",)"
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

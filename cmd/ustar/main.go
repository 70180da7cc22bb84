// Command ustar creates, lists, and extracts USTAR-format archives.
//
//	ustar -c -f archive.tar dir file...   create
//	ustar -t -f archive.tar [prefix...]   list
//	ustar -x -f archive.tar [prefix...]   extract
//
// An absent or "-" archive means stdin (list/extract) or stdout (create).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/meigma/ustar"
)

type options struct {
	Create   bool   `short:"c" description:"Create a new archive from the named files"`
	Extract  bool   `short:"x" description:"Extract files from the archive"`
	List     bool   `short:"t" description:"List the contents of the archive"`
	Verbose  bool   `short:"v" description:"Print each entry as it is processed"`
	ToStdout bool   `short:"O" description:"Extract file data to stdout"`
	File     string `short:"f" value-name:"ARCHIVE" description:"Archive file, or \"-\" for stdin/stdout"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ustar:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Usage = "-[cxtvOf] [ARCHIVE] [FILE]..."

	args, err := parser.ParseArgs(argv)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return nil
		}
		return err
	}

	modes := 0
	for _, on := range []bool{opts.Create, opts.Extract, opts.List} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return errors.New("exactly one of -c, -x or -t must be specified")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	switch {
	case opts.Create:
		return create(ctx, opts, args, logger)
	case opts.Extract:
		return extract(ctx, opts, args, logger)
	default:
		return list(opts, args, logger)
	}
}

func create(ctx context.Context, opts options, args []string, logger *slog.Logger) error {
	var out io.Writer = os.Stdout
	if opts.File != "" && opts.File != "-" {
		f, err := os.Create(opts.File)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	createOpts := []ustar.CreateOption{ustar.CreateWithLogger(logger)}
	if opts.Verbose {
		createOpts = append(createOpts, ustar.CreateWithVerbose(func(name string) {
			fmt.Fprintf(os.Stderr, "a %s\n", name)
		}))
	}
	return ustar.Create(ctx, out, args, createOpts...)
}

func extract(ctx context.Context, opts options, args []string, logger *slog.Logger) error {
	in, err := openArchive(opts.File)
	if err != nil {
		return err
	}
	defer in.Close()

	extractOpts := []ustar.ExtractOption{
		ustar.ExtractWithLogger(logger),
		ustar.ExtractWithPrefixes(args...),
	}
	if opts.ToStdout {
		extractOpts = append(extractOpts, ustar.ExtractWithOutput(os.Stdout))
	}
	if opts.Verbose {
		extractOpts = append(extractOpts, ustar.ExtractWithVerbose(func(name string) {
			fmt.Fprintf(os.Stderr, "x %s\n", name)
		}))
	}
	return ustar.Extract(ctx, in, ".", extractOpts...)
}

func list(opts options, args []string, logger *slog.Logger) error {
	in, err := openArchive(opts.File)
	if err != nil {
		return err
	}
	defer in.Close()

	return ustar.List(in, os.Stdout,
		ustar.ListWithLogger(logger),
		ustar.ListWithPrefixes(args...),
		ustar.ListWithVerbose(opts.Verbose),
	)
}

func openArchive(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

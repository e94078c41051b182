package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"sessionstate/internal/ctl"
	"sessionstate/internal/savedstate"
)

const usage = `usage: sessionctl <command> [flags]

commands:
  inspect FILE      print the saved state held in FILE
  upgrade FILE      rewrite FILE at the current schema version
  quarantine DIR    list blobs set aside after failed loads
  version           print the current schema version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "sessionctl: %s\n", err)
		os.Exit(1)
	}
}

func storeFlags(name string, opts *ctl.Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.StringVarP(&opts.Format, "format", "f", "cbor", "blob format: cbor or protobuf")
	fs.StringVarP(&opts.Compression, "compression", "z", "none", "blob compression: none or zstd")
	return fs
}

func fileArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func run(cmd string, args []string) error {
	ctx := context.Background()

	switch cmd {
	case "inspect":
		var opts ctl.Options
		fs := storeFlags(cmd, &opts)
		raw := fs.Bool("raw", false, "dump the snapshot as stored instead of upgraded")
		if err := fs.Parse(args); err != nil {
			return err
		}
		path, err := fileArg(fs, "FILE")
		if err != nil {
			return err
		}
		opts.Path = path
		_, err = ctl.Inspect(ctx, os.Stdout, opts, *raw)
		return err

	case "upgrade":
		var opts ctl.Options
		fs := storeFlags(cmd, &opts)
		if err := fs.Parse(args); err != nil {
			return err
		}
		path, err := fileArg(fs, "FILE")
		if err != nil {
			return err
		}
		opts.Path = path
		_, _, err = ctl.Upgrade(ctx, os.Stdout, opts)
		return err

	case "quarantine":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		if err := fs.Parse(args); err != nil {
			return err
		}
		dir, err := fileArg(fs, "DIR")
		if err != nil {
			return err
		}
		_, err = ctl.ListQuarantine(os.Stdout, dir)
		return err

	case "version":
		fmt.Printf("schema v%d\n", savedstate.CurrentVersion)
		return nil

	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

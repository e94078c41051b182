package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"sessionstate/internal/di"
	"sessionstate/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	pflag.StringVarP(&flags.ConfigPath, "config", "c", "config/config.yml", "path to the yaml config file")
	pflag.BoolVarP(&flags.DebugMode, "debug", "d", false, "also log to the console")
	pflag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "sessiond: %s\n", err)
		os.Exit(1)
	}
}

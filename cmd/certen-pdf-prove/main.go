// certen-pdf-prove runs the proof pipeline against a signed PDF and emits
// a manifest plus the pipeline's output artefacts (see pipeline.Prove)
// under the configured output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/certen/pdf-zk-proof/pkg/config"
	"github.com/certen/pdf-zk-proof/pkg/logging"
	"github.com/certen/pdf-zk-proof/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to the pipeline config YAML")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("-config is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	log, err := logging.New(&logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}

	result, err := pipeline.Prove(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "manifest written to %s\n", result.ManifestPath)
	return nil
}

// Command qpick-shard reads a TSV query stream from stdin (or --input) and
// writes shard-partitioned n-gram lines under --out.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/cognicore/qpick/pkg/qpick/config"
	"github.com/cognicore/qpick/pkg/qpick/shard"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to qpick config YAML (required)")
		input      = flag.String("input", "", "Path to TSV input file (default: stdin)")
		out        = flag.String("out", "", "Output shard directory (required)")
		workers    = flag.Int("workers", 4, "Number of worker goroutines")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}
	if *out == "" {
		log.Fatal("--out required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	p, closer, err := cfg.BuildParser()
	if err != nil {
		log.Fatalf("build parser: %v", err)
	}
	defer closer.Close()

	loggers, err := config.NewLoggers(cfg.LogDir)
	if err != nil {
		log.Fatalf("open loggers: %v", err)
	}

	reader := os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		reader = f
	}

	runCfg := shard.Config{
		OutDir:     *out,
		NumShards:  cfg.Shard.NumShards,
		NumWorkers: *workers,
		FlushBytes: cfg.Shard.FlushBytes,
	}

	if err := shard.Run(context.Background(), reader, runCfg, p, loggers.Error); err != nil {
		log.Fatalf("shard run: %v", err)
	}
	loggers.Access.Printf("sharded %s into %s (%d shards)", *input, *out, cfg.Shard.NumShards)
}

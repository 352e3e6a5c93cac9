// Command kev is a small admin tool for the configured backend: verify
// connectivity, list a schema's document ids, or flush a schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/grimmjow8/kev/config"
	"github.com/grimmjow8/kev/pkg/logger"
)

func main() {
	var (
		schema  string
		flush   bool
		list    bool
		timeout time.Duration
	)
	flag.StringVar(&schema, "schema", "", "Schema name to operate on")
	flag.BoolVar(&flush, "flush", false, "Remove every document and index entry of the schema")
	flag.BoolVar(&list, "list", false, "Print the schema's document ids")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall operation timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if schema == "" {
		log.Fatal("a -schema is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	h, closeFn, err := config.OpenHandler(ctx, cfg, schema, nil)
	if err != nil {
		log.Fatalw("open backend", "backend", cfg.Backend, "err", err)
	}
	defer closeFn(context.Background())

	switch {
	case flush:
		if err := h.FlushDB(ctx); err != nil {
			log.Fatalw("flush", "schema", schema, "err", err)
		}
		log.Infow("schema flushed", "schema", schema, "backend", cfg.Backend)
	case list:
		ids, err := h.ScanAll(ctx)
		if err != nil {
			log.Fatalw("scan", "schema", schema, "err", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		log.Infow("scan complete", "schema", schema, "count", len(ids))
	default:
		// connectivity check only
		if _, err := h.ScanAll(ctx); err != nil {
			log.Fatalw("backend unreachable", "backend", cfg.Backend, "err", err)
		}
		log.Infow("backend reachable", "backend", cfg.Backend, "schema", schema)
	}
}

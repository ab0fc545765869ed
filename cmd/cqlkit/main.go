// Package main implements the cqlkit command-line tool: ad-hoc scope
// queries and wide-row dumps against a live cluster.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cqlkit/cqlkit/internal/config"
	"github.com/cqlkit/cqlkit/internal/observability"
	"github.com/cqlkit/cqlkit/internal/transport"
	"github.com/cqlkit/cqlkit/pkg/exec"
	"github.com/cqlkit/cqlkit/pkg/scope"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML or JSON config file")
		table       = flag.String("table", "", "row container to query")
		key         = flag.String("key", "", "row key to look up; empty lists rows by index")
		indexColumn = flag.String("index-column", "", "secondary-indexed column for equality lookup")
		indexValues = flag.String("index-values", "", "comma-separated values for -index-column")
		columns     = flag.String("columns", "", "comma-separated explicit column projection")
		limit       = flag.Int("limit", 0, "row limit, 0 for unlimited")
		dump        = flag.Bool("dump", false, "page through every column of the row given by -key")
		showStats   = flag.Bool("stats", false, "print query statistics before exiting")
	)
	flag.Parse()

	// .env first, so file/env config can reference it.
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *table == "" {
		log.Fatal("-table is required")
	}

	conn, err := transport.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	log.Printf("Connected to %s keyspace=%s", strings.Join(cfg.Hosts, ","), cfg.Keyspace)

	stats := observability.NewQueryStats(time.Hour)
	executor := exec.New(conn, exec.Config{
		Concurrency: cfg.Concurrency,
		BatchSize:   cfg.BatchSize,
		Stats:       stats,
	})

	ctx := context.Background()

	if *dump {
		if *key == "" {
			log.Fatal("-dump requires -key")
		}
		dumpColumns(ctx, executor, *table, cfg.KeyColumn, *key)
	} else {
		runQuery(ctx, executor, cfg, *table, *key, *indexColumn, *indexValues, *columns, *limit)
	}

	if *showStats {
		for _, p := range stats.GetTopPredicates(10) {
			log.Printf("predicate %s: %d", p.Column, p.Frequency)
		}
		e := stats.Expansions()
		log.Printf("fanouts=%d legs=%d subqueries=%d", e.Fanouts, e.FanoutLegs, e.Subqueries)
	}
}

// runQuery builds a scope from the flags and prints its rows.
func runQuery(ctx context.Context, executor *exec.Executor, cfg *config.Config,
	table, key, indexColumn, indexValues, columns string, limit int) {

	s := scope.New(table, cfg.KeyColumn).WithConsistency(cfg.DefaultConsistency())
	if key != "" {
		s = s.Where(key)
	}
	if indexColumn != "" {
		values := strings.Split(indexValues, ",")
		args := make([]interface{}, len(values))
		for i, v := range values {
			args[i] = v
		}
		s = s.WhereEquals(indexColumn, args...)
	}
	if columns != "" {
		s = s.Select(strings.Split(columns, ",")...)
	}
	if limit > 0 {
		s = s.WithLimit(limit)
	}
	if err := s.Err(); err != nil {
		log.Fatalf("Invalid query: %v", err)
	}

	rows, err := executor.Query(s).Load(ctx)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	for _, row := range rows {
		fmt.Fprintf(os.Stdout, "%v\t%v\n", row.Key, row.Columns)
	}
	log.Printf("%d row(s)", len(rows))
}

// dumpColumns pages through every column of one wide row.
func dumpColumns(ctx context.Context, executor *exec.Executor, table, keyColumn, key string) {
	it := executor.ColumnScan(table, keyColumn, key)
	count := 0
	for {
		col, ok := it.Next(ctx)
		if !ok {
			break
		}
		fmt.Fprintf(os.Stdout, "%s\t%v\n", col.Name, col.Value)
		count++
	}
	if err := it.Err(); err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	log.Printf("%d column(s)", count)
}

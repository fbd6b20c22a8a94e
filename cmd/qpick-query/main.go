// Command qpick-query is an interactive/one-shot CLI over a built query
// engine: parse a query, retrieve matching postings, and print the
// resulting explainable card.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cognicore/qpick/pkg/qpick/config"
	"github.com/cognicore/qpick/pkg/qpick/engine"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to qpick config YAML (required)")
		query      = flag.String("query", "", "One-shot query (non-interactive mode)")
		topK       = flag.Int("topk", 5, "Number of candidates to return")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	e, closer, err := cfg.BuildEngine(ctx)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	defer closer.Close()

	if *query != "" {
		if err := runQuery(ctx, e, *query, *topK); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Println("qpick-query: type a query (Ctrl+D to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if err := runQuery(ctx, e, q, *topK); err != nil {
			fmt.Println("error:", err)
		}
	}
	fmt.Println()
}

func runQuery(ctx context.Context, e *engine.Engine, query string, topK int) error {
	resp, err := e.Search(ctx, engine.SearchRequest{Query: query, TopK: topK})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	card := resp.Card
	if card.ID == "" {
		fmt.Println("no results")
		return nil
	}

	fmt.Printf("\ncard %s\n", card.ID)
	fmt.Printf("  query n-grams: %v\n", card.Explain.QueryNgrams)
	fmt.Printf("  must-have:     %v\n", card.Explain.MustHave)
	fmt.Printf("  matched:       %v\n", card.Explain.MatchedNgrams)
	fmt.Println("  score breakdown:")
	for k, v := range card.ScoreBreakdown {
		fmt.Printf("    %s: %.4f\n", k, v)
	}
	fmt.Println("  candidates:")
	for _, c := range card.Matches {
		fmt.Printf("    pqid=%d reminder=%d score=%.4f\n", c.PQID, c.Reminder, c.Breakdown.Total)
	}
	fmt.Println()
	return nil
}

// Command qpick-buildweights scans a TSV query corpus, counts token
// document frequency, and emits the term-weight and toponym FSTs the
// query-fingerprint pipeline loads at query time.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/cognicore/qpick/pkg/qpick/buildweights"
	"github.com/cognicore/qpick/pkg/qpick/fstweight"
	"github.com/cognicore/qpick/pkg/qpick/normalize"
	"github.com/cognicore/qpick/pkg/qpick/pmi"
	"github.com/cognicore/qpick/pkg/qpick/shard"
	"github.com/cognicore/qpick/pkg/qpick/tokenize"
)

func main() {
	var (
		input       = flag.String("input", "", "Path to TSV query corpus (required)")
		out         = flag.String("out", "", "Output path for the term-weight FST (required)")
		toponymsIn  = flag.String("toponyms", "", "Optional: newline-delimited file of known toponym words to carry into the FST as-is")
		toponymsOut = flag.String("toponyms-out", "", "Optional: output path for a toponym-set FST (requires --toponyms)")
		epsilon     = flag.Float64("epsilon", 1.0, "PMI/salience smoothing constant")
	)
	flag.Parse()

	if *input == "" || *out == "" {
		log.Fatal("--input and --out are required")
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	analyzer := buildweights.NewAnalyzer()
	var batch [][]string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		query, ok := shard.ParseLine(scanner.Text())
		if !ok {
			continue
		}
		result := tokenize.Tokenize(normalize.Normalize(query), tokenize.Index, nil)
		batch = append(batch, result.Tokens)
		if len(batch) >= 4096 {
			analyzer.ProcessBatch(batch)
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("scan input: %v", err)
	}
	if len(batch) > 0 {
		analyzer.ProcessBatch(batch)
	}

	stats := analyzer.Snapshot()
	calc := pmi.NewCalculator(*epsilon)
	weights := stats.Weights(calc)
	sorted := buildweights.SortedEntries(weights)

	if err := fstweight.BuildWeightMap(*out, func(insert func(word string, weight uint64) error) error {
		for _, word := range sorted {
			if err := insert(word, weights[word]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		log.Fatalf("build weight map: %v", err)
	}
	log.Printf("wrote %d token weights from %d queries to %s", len(weights), stats.TotalQueries, *out)

	if *toponymsIn != "" {
		if *toponymsOut == "" {
			log.Fatal("--toponyms-out required when --toponyms is set")
		}
		words, err := readLines(*toponymsIn)
		if err != nil {
			log.Fatalf("read toponyms: %v", err)
		}
		if err := fstweight.BuildToponymSet(*toponymsOut, words); err != nil {
			log.Fatalf("build toponym set: %v", err)
		}
		log.Printf("wrote %d toponyms to %s", len(words), *toponymsOut)
	}
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	sortedUnique := buildweights.SortedEntries(toSet(out))
	return sortedUnique, nil
}

func toSet(words []string) map[string]uint64 {
	m := make(map[string]uint64, len(words))
	for _, w := range words {
		m[w] = 0
	}
	return m
}

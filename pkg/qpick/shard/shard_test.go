package shard

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/qpick/pkg/qpick/parser"
)

func TestJumpHashInRange(t *testing.T) {
	for _, key := range []uint64{0, 1, 42, 1 << 40, ^uint64(0)} {
		shard := JumpHash(key, 16)
		if shard < 0 || shard >= 16 {
			t.Fatalf("JumpHash(%d, 16) = %d, out of range", key, shard)
		}
	}
}

func TestJumpHashDeterministic(t *testing.T) {
	a := JumpHash(StableHash("disneyland paris"), 32)
	b := JumpHash(StableHash("disneyland paris"), 32)
	if a != b {
		t.Fatalf("JumpHash not deterministic: %d != %d", a, b)
	}
}

func TestShardForSingleBucket(t *testing.T) {
	if got := ShardFor("anything", 1); got != 0 {
		t.Fatalf("ShardFor with 1 bucket = %d, want 0", got)
	}
}

func TestParseLineRecognizesQueryPrefix(t *testing.T) {
	query, ok := ParseLine("q:disneyland paris\tt:Disneyland Paris tickets\tu:example.com/tickets")
	if !ok || query != "disneyland paris" {
		t.Fatalf("ParseLine = (%q, %v), want (\"disneyland paris\", true)", query, ok)
	}
}

func TestParseLineUnknownPrefixIsNotAQuery(t *testing.T) {
	_, ok := ParseLine("t:some title\tu:example.com")
	if ok {
		t.Fatalf("expected unknown-prefix line to not be a query")
	}
}

func TestWeightByteClamps(t *testing.T) {
	if WeightByte(-1) != 0 {
		t.Fatalf("WeightByte(-1) should clamp to 0")
	}
	if WeightByte(10) != 255 {
		t.Fatalf("WeightByte(10) should clamp to 255")
	}
	if WeightByte(0.5) != 50 {
		t.Fatalf("WeightByte(0.5) = %d, want 50", WeightByte(0.5))
	}
}

type fakeWeights map[string]uint64

func (f fakeWeights) Weight(word string) (uint64, bool) {
	w, ok := f[word]
	return w, ok
}

func TestRunProducesShardFiles(t *testing.T) {
	dir := t.TempDir()
	p := parser.New(fakeWeights{"disneyland": 900, "paris": 700}, nil, nil, nil)

	input := strings.NewReader("q:disneyland paris\nt:not a query\nqe:disneyland paris tickets\n")
	cfg := Config{OutDir: dir, NumShards: 4, NumWorkers: 2, FlushBytes: 1}

	if err := Run(context.Background(), input, cfg, p, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one shard file to be created")
	}

	var totalLines int
	for _, e := range entries {
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("Open(%s): %v", e.Name(), err)
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			fields := strings.Split(sc.Text(), "\t")
			if len(fields) != 4 {
				t.Fatalf("shard line %q does not have 4 tab-separated fields", sc.Text())
			}
			totalLines++
		}
		f.Close()
	}
	if totalLines == 0 {
		t.Fatalf("expected at least one shard line written")
	}
}

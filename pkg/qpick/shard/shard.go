// Package shard implements the sharding driver: it fans out a TSV stream of
// queries across N worker goroutines, parses each query through
// pkg/qpick/parser, and appends one line per n-gram into the output shard
// selected by jump-consistent hashing of the n-gram's stable 64-bit hash.
package shard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/qpick/pkg/qpick/internalerr"
	"github.com/cognicore/qpick/pkg/qpick/parser"
)

// recognizedPrefixes are the TSV column prefixes that mark a query column;
// any other prefix classifies the record as a non-query (title/url) line.
var recognizedPrefixes = map[string]bool{"q": true, "qe": true}

// StableHash is the 64-bit hash used for shard selection, grounded on
// piqnyx-ragproxy's xxhash-based n-gram hashing.
func StableHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// JumpHash is Google's jump consistent hash: it maps key into
// [0, numBuckets) with minimal remapping as numBuckets grows.
func JumpHash(key uint64, numBuckets int32) int32 {
	var b, j int64 = -1, 0
	for j < int64(numBuckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}
	return int32(b)
}

// ShardFor selects the output shard for an n-gram key.
func ShardFor(ngram string, numShards int) int32 {
	return JumpHash(StableHash(ngram), int32(numShards))
}

// ParseLine extracts the query column from a sharder input line. A line is
// "<prefix>:<value>\t<prefix>:<value>..."; the first recognized query
// prefix ("q" or "qe") wins. ok is false for non-query (title/url) lines.
func ParseLine(line string) (query string, ok bool) {
	for _, col := range strings.Split(line, "\t") {
		prefix, rest, found := strings.Cut(col, ":")
		if !found {
			continue
		}
		if recognizedPrefixes[prefix] {
			return rest, true
		}
	}
	return "", false
}

// WeightByte converts a normalized n-gram weight to the single-byte encoding
// the shard-line format uses.
func WeightByte(weight float64) byte {
	v := math.Round(weight * 100)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// Config holds the sharding run's numeric knobs.
type Config struct {
	OutDir     string
	NumShards  int
	NumWorkers int
	FlushBytes int
}

// Run fans out r's lines across cfg.NumWorkers goroutines, parsing each
// query through p and appending shard lines under cfg.OutDir. Malformed
// lines are logged and skipped; a shard write failure panics, per spec §7.
// Every run is tagged with a random UUID so its log lines can be
// correlated across workers, the way caddy tags each request.
func Run(ctx context.Context, r io.Reader, cfg Config, p *parser.Parser, errLog *log.Logger) error {
	runID := uuid.New()
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrConfigMissing, err)
	}
	if errLog != nil {
		errLog.Printf("shard run %s: starting, out_dir=%s num_shards=%d num_workers=%d", runID, cfg.OutDir, cfg.NumShards, cfg.NumWorkers)
	}

	type job struct {
		qid  int64
		line string
	}

	jobs := make(chan job, cfg.NumWorkers*4)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		var qid int64
		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- job{qid: qid, line: scanner.Text()}:
			}
			qid++
		}
		return scanner.Err()
	})

	for w := 0; w < cfg.NumWorkers; w++ {
		workerID := w
		g.Go(func() error {
			writers := newShardWriters(cfg.OutDir, cfg.NumShards, cfg.FlushBytes)
			defer writers.closeAll()

			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case jb, open := <-jobs:
					if !open {
						return nil
					}
					processLine(jb.qid, jb.line, cfg.NumShards, p, writers, errLog, runID, workerID)
				}
			}
		})
	}

	err := g.Wait()
	if errLog != nil {
		if err != nil {
			errLog.Printf("shard run %s: failed: %v", runID, err)
		} else {
			errLog.Printf("shard run %s: completed", runID)
		}
	}
	return err
}

func processLine(qid int64, line string, numShards int, p *parser.Parser, writers *shardWriters, errLog *log.Logger, runID uuid.UUID, workerID int) {
	query, ok := ParseLine(line)
	if !ok {
		if errLog != nil {
			errLog.Printf("shard run %s worker %d: %v: %q", runID, workerID, internalerr.ErrMalformedLine, line)
		}
		return
	}

	out := p.Parse(query, parser.Index)
	pqid := qid / int64(numShards)
	reminder := qid % int64(numShards)

	for i, ngram := range out.Ngrams {
		shardID := ShardFor(ngram, numShards)
		w := writers.get(shardID)
		wb := WeightByte(out.NgramWeights[i])
		if _, err := fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", pqid, reminder, ngram, wb); err != nil {
			panic(fmt.Errorf("%w: %v", internalerr.ErrIOWriteFailure, err))
		}
		writers.maybeFlush(shardID)
	}
}

// shardWriters is one worker's private set of per-shard buffered writers,
// each backed by a shared output file opened in append mode.
type shardWriters struct {
	mu         sync.Mutex
	dir        string
	flushBytes int
	files      map[int32]*os.File
	bufs       map[int32]*bufio.Writer
}

func newShardWriters(dir string, numShards, flushBytes int) *shardWriters {
	return &shardWriters{
		dir:        dir,
		flushBytes: flushBytes,
		files:      make(map[int32]*os.File, numShards),
		bufs:       make(map[int32]*bufio.Writer, numShards),
	}
}

func (s *shardWriters) get(shardID int32) *bufio.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.bufs[shardID]; ok {
		return w
	}
	path := filepath.Join(s.dir, fmt.Sprintf("shard-%04d.tsv", shardID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		panic(fmt.Errorf("%w: %v", internalerr.ErrIOWriteFailure, err))
	}
	w := bufio.NewWriterSize(f, s.flushBytes)
	s.files[shardID] = f
	s.bufs[shardID] = w
	return w
}

func (s *shardWriters) maybeFlush(shardID int32) {
	s.mu.Lock()
	w := s.bufs[shardID]
	s.mu.Unlock()
	if w.Buffered() >= s.flushBytes {
		if err := w.Flush(); err != nil {
			panic(fmt.Errorf("%w: %v", internalerr.ErrIOWriteFailure, err))
		}
	}
}

func (s *shardWriters) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.bufs {
		_ = w.Flush()
		_ = s.files[id].Close()
	}
}

package tracker

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// replayHeader identifies a fact replay file and its format version.
type replayHeader struct {
	Magic   string
	Version int
}

const (
	replayMagic   = "HSTRK-FACTS"
	replayVersion = 1
)

// Recorder appends every applied fact to a gzip-compressed gob stream, so a
// problematic match can be replayed through the engine offline.
type Recorder struct {
	mu    sync.Mutex
	f     *os.File
	gz    *gzip.Writer
	enc   *gob.Encoder
	count int
}

// NewRecorder creates (or truncates) the replay file at path.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating replay directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating replay file: %w", err)
	}
	gz := gzip.NewWriter(f)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(replayHeader{Magic: replayMagic, Version: replayVersion}); err != nil {
		gz.Close()
		f.Close()
		return nil, fmt.Errorf("writing replay header: %w", err)
	}
	return &Recorder{f: f, gz: gz, enc: enc}, nil
}

// Record appends one fact.
func (r *Recorder) Record(fact Fact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return errors.New("recorder closed")
	}
	if err := r.enc.Encode(fact); err != nil {
		return fmt.Errorf("encoding fact: %w", err)
	}
	r.count++
	return nil
}

// Count returns the number of recorded facts.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes and closes the replay file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return nil
	}
	r.enc = nil
	if err := r.gz.Close(); err != nil {
		r.f.Close()
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return r.f.Close()
}

// ReadReplay loads all facts from a replay file.
func ReadReplay(path string) ([]Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening replay file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	dec := gob.NewDecoder(gz)

	var header replayHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("reading replay header: %w", err)
	}
	if header.Magic != replayMagic {
		return nil, fmt.Errorf("not a fact replay file: magic %q", header.Magic)
	}
	if header.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version %d", header.Version)
	}

	var facts []Fact
	for {
		var fact Fact
		if err := dec.Decode(&fact); err != nil {
			if errors.Is(err, io.EOF) {
				return facts, nil
			}
			return nil, fmt.Errorf("decoding fact %d: %w", len(facts), err)
		}
		facts = append(facts, fact)
	}
}

// ReplaySource streams a recorded fact list as a FactSource.
type ReplaySource struct {
	facts chan Fact
}

// NewReplaySource builds a source from an in-memory fact list.
func NewReplaySource(facts []Fact) *ReplaySource {
	ch := make(chan Fact, len(facts))
	for _, fact := range facts {
		ch <- fact
	}
	close(ch)
	return &ReplaySource{facts: ch}
}

// OpenReplay builds a source from a replay file.
func OpenReplay(path string, logger *zap.Logger) (*ReplaySource, error) {
	facts, err := ReadReplay(path)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("replay loaded", zap.String("path", path), zap.Int("facts", len(facts)))
	}
	return NewReplaySource(facts), nil
}

// Facts implements FactSource.
func (s *ReplaySource) Facts() <-chan Fact {
	return s.facts
}

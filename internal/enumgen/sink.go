package enumgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ontorefine/internal/ontology"
)

// ErrArtifactExists is returned when an artifact would overwrite an
// existing one.
var ErrArtifactExists = errors.New("enumeration artifact already exists")

// Sink persists finished artifacts.
type Sink interface {
	Put(ctx context.Context, a *ontology.Artifact) error
}

// DirSink writes one file per artifact, named after the artifact, into Dir.
// Existing files are never replaced.
type DirSink struct {
	Dir    string
	Format ontology.Format
}

// Put encodes a into Dir.
func (s DirSink) Put(_ context.Context, a *ontology.Artifact) error {
	path := filepath.Join(s.Dir, a.Name+s.Format.Ext())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrArtifactExists, path)
		}
		return err
	}
	if err := ontology.Encode(f, a, s.Format); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// MemorySink keeps artifacts in memory, keyed by name. It rejects
// duplicates the way DirSink does.
type MemorySink struct {
	mu        sync.Mutex
	Artifacts []*ontology.Artifact
	byName    map[string]*ontology.Artifact
}

// Put records a.
func (s *MemorySink) Put(_ context.Context, a *ontology.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byName == nil {
		s.byName = make(map[string]*ontology.Artifact)
	}
	if _, dup := s.byName[a.Name]; dup {
		return fmt.Errorf("%w: %s", ErrArtifactExists, a.Name)
	}
	s.byName[a.Name] = a
	s.Artifacts = append(s.Artifacts, a)
	return nil
}

// Get returns the artifact with the given name.
func (s *MemorySink) Get(name string) (*ontology.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byName[name]
	return a, ok
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a *ontology.Artifact) error

// Put calls fn.
func (fn SinkFunc) Put(ctx context.Context, a *ontology.Artifact) error { return fn(ctx, a) }

// Package jsonstore implements a durable keyed document store: an in-memory
// map of JSON documents with debounced, atomic persistence to a single file.
//
// The in-memory map is authoritative. Mutations mark the store dirty and wake
// a single coalescing writer goroutine, which waits out the debounce window
// and then serializes the whole map to a temporary file and renames it over
// the target, so a crash mid-write never corrupts the primary file. A flush
// failure leaves the mutation in memory and is retried on the next cycle.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/metrics"
)

// ErrClosed is returned by mutations on a store that has been closed.
var ErrClosed = errors.New("jsonstore: store is closed")

// Store maps string keys to documents of type T. Documents are held as raw
// JSON internally, so Get and All hand out deep copies and never alias
// shared state.
type Store[T any] struct {
	path     string
	debounce time.Duration

	mu     sync.Mutex
	data   map[string]json.RawMessage
	dirty  bool
	closed bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// Open loads the store from path, or starts empty when the file is missing
// or unparseable (a corrupt file is preserved next to the original as
// <path>.corrupt). The background writer is running when Open returns.
func Open[T any](path string, debounce time.Duration) (*Store[T], error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	s := &Store[T]{
		path:     path,
		debounce: debounce,
		data:     make(map[string]json.RawMessage),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	s.load()

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

func (s *Store[T]) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", s.path).Msg("Store file unreadable, starting empty")
		}
		return
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		// Accepted data-loss tradeoff: a corrupt file resets the store
		// instead of failing the service. Keep the bytes around for manual
		// recovery.
		logger.Error().Err(err).Str("path", s.path).Msg("Store file corrupt, starting empty")
		if renameErr := os.Rename(s.path, s.path+".corrupt"); renameErr != nil {
			logger.Warn().Err(renameErr).Msg("Failed to preserve corrupt store file")
		}
		return
	}
	if data != nil {
		s.data = data
	}
}

// Get returns a deep copy of the document stored under key.
func (s *Store[T]) Get(key string) (T, bool) {
	var doc T

	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return doc, false
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Stored document undecodable")
		return doc, false
	}
	return doc, true
}

// Set replaces the document under key unconditionally (last writer wins) and
// schedules an asynchronous flush.
func (s *Store[T]) Set(key string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.data[key] = raw
	s.dirty = true
	s.mu.Unlock()

	s.scheduleFlush()
	return nil
}

// Delete removes the document under key and schedules an asynchronous flush.
// Deleting an absent key is a no-op.
func (s *Store[T]) Delete(key string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.data[key]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.data, key)
	s.dirty = true
	s.mu.Unlock()

	s.scheduleFlush()
	return nil
}

// All returns a deep copy of every stored document. Undecodable documents
// are skipped.
func (s *Store[T]) All() map[string]T {
	s.mu.Lock()
	snapshot := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	s.mu.Unlock()

	out := make(map[string]T, len(snapshot))
	for k, raw := range snapshot {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			logger.Error().Err(err).Str("key", k).Msg("Stored document undecodable")
			continue
		}
		out[k] = doc
	}
	return out
}

// Len returns the number of stored documents.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// scheduleFlush wakes the writer. The buffered channel coalesces signals, so
// a pending flush is never scheduled twice.
func (s *Store[T]) scheduleFlush() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store[T]) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		timer := time.NewTimer(s.debounce)
		select {
		case <-s.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.Flush(); err != nil {
			metrics.StoreFlushErrors.Inc()
			logger.Error().Err(err).Str("path", s.path).Msg("Store flush failed")
			// Re-arm so the retry runs after the next debounce window even
			// when no further mutation arrives.
			s.scheduleFlush()
		}
	}
}

// Flush persists the current in-memory state immediately. It is a no-op when
// nothing changed since the last successful flush.
func (s *Store[T]) Flush() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.writeFile(snapshot); err != nil {
		// Keep the state dirty so the next cycle retries.
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store[T]) writeFile(snapshot map[string]json.RawMessage) error {
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// Close stops the background writer and performs a final synchronous flush,
// so a clean shutdown never loses a mutation to the debounce window.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
	return s.Flush()
}

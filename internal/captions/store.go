package captions

import (
	"fmt"
	"sync"

	"dubstudio/internal/services"
)

// Store is the live, mutable caption set for one project. It is safe for
// concurrent use. Renders must read through Snapshot.
type Store struct {
	mu   sync.RWMutex
	caps []Caption
}

// NewStore returns a store seeded with caps. The slice must already satisfy
// Validate; callers loading untrusted data should use Load.
func NewStore(caps []Caption) *Store {
	return &Store{caps: clone(caps)}
}

// Load replaces the set with previously persisted captions after validation.
func (s *Store) Load(caps []Caption) error {
	if err := Validate(caps); err != nil {
		return services.Wrap(services.ErrValidation, "captions", "load", "invalid caption set", err)
	}
	s.mu.Lock()
	s.caps = clone(caps)
	s.mu.Unlock()
	return nil
}

// Replace discards the current set and admits a fresh transcription.
func (s *Store) Replace(segments []Segment) IngestReport {
	caps, report := Normalize(segments)
	s.mu.Lock()
	s.caps = caps
	s.mu.Unlock()
	return report
}

// UpdateText edits the text of one caption. Intervals and ids never change.
func (s *Store) UpdateText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.caps {
		if s.caps[i].ID == id {
			s.caps[i].Text = text
			return nil
		}
	}
	return services.Wrap(services.ErrNotFound, "captions", "edit", fmt.Sprintf("caption %q", id), nil)
}

// ApplyTranslation replaces every caption's text with the translated text.
// The translated set must carry exactly the same ids and intervals in the
// same order; otherwise nothing is changed.
func (s *Store) ApplyTranslation(translated []Caption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sameShape(s.caps, translated); err != nil {
		return services.Wrap(services.ErrCollaborator, "translation", "apply", "translated captions do not match", err)
	}
	for i := range s.caps {
		s.caps[i].Text = translated[i].Text
	}
	return nil
}

// Captions returns a copy of the current set.
func (s *Store) Captions() []Caption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.caps)
}

// Len returns the number of stored captions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.caps)
}

// Snapshot returns an isolated, indexed copy of the current set.
func (s *Store) Snapshot() Timeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewTimeline(s.caps)
}

func sameShape(current, translated []Caption) error {
	if len(current) != len(translated) {
		return fmt.Errorf("expected %d captions, got %d", len(current), len(translated))
	}
	for i := range current {
		a, b := current[i], translated[i]
		if a.ID != b.ID {
			return fmt.Errorf("caption %d: expected id %q, got %q", i, a.ID, b.ID)
		}
		if a.Start != b.Start || a.End != b.End {
			return fmt.Errorf("caption %q: interval changed from [%g, %g] to [%g, %g]", a.ID, a.Start, a.End, b.Start, b.End)
		}
	}
	return nil
}

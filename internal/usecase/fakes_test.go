package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sync"
	"time"

	"certmanager/internal/domain"
)

type memControlRepo struct {
	mu        sync.Mutex
	rows      []domain.Control
	nextID    uint
	createErr error
	updates   int
}

func (r *memControlRepo) ListAll(ctx context.Context) ([]domain.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Control, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *memControlRepo) GetByID(ctx context.Context, id uint) (domain.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Control{}, domain.ErrNotFound
}

func (r *memControlRepo) GetByRequirementID(ctx context.Context, requirementID string) (domain.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.RequirementID == requirementID {
			return c, nil
		}
	}
	return domain.Control{}, domain.ErrNotFound
}

func (r *memControlRepo) Create(ctx context.Context, c domain.Control) (domain.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return domain.Control{}, r.createErr
	}
	return r.insertLocked(c), nil
}

func (r *memControlRepo) insertLocked(c domain.Control) domain.Control {
	r.nextID++
	c.ID = r.nextID
	r.rows = append(r.rows, c)
	return c
}

func (r *memControlRepo) SeedIfEmpty(ctx context.Context, controls []domain.Control) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) > 0 {
		return 0, nil
	}
	for _, c := range controls {
		r.insertLocked(c)
	}
	return len(controls), nil
}

func (r *memControlRepo) UpdateTracking(ctx context.Context, id uint, update domain.ControlUpdate) (domain.Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			update.Apply(&r.rows[i])
			return r.rows[i], nil
		}
	}
	return domain.Control{}, domain.ErrNotFound
}

func (r *memControlRepo) UpdateAssessment(ctx context.Context, id uint, objectives, methods *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].AssessmentObjectives = objectives
			r.rows[i].AssessmentMethods = methods
			r.updates++
			return nil
		}
	}
	return domain.ErrNotFound
}

type memTextLogRepo struct {
	mu     sync.Mutex
	rows   []domain.TextLog
	nextID uint
}

func (r *memTextLogRepo) Create(ctx context.Context, entry domain.TextLog) (domain.TextLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	r.rows = append(r.rows, entry)
	return entry, nil
}

func (r *memTextLogRepo) ListByRequirement(ctx context.Context, requirementID string) ([]domain.TextLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TextLog
	for _, e := range r.rows {
		if e.RequirementID == requirementID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memTextLogRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.rows {
		if e.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memEvidenceRepo struct {
	mu        sync.Mutex
	rows      []domain.Evidence
	nextID    uint
	createErr error
}

func (r *memEvidenceRepo) Create(ctx context.Context, ev domain.Evidence) (domain.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return domain.Evidence{}, r.createErr
	}
	r.nextID++
	ev.ID = r.nextID
	r.rows = append(r.rows, ev)
	return ev, nil
}

func (r *memEvidenceRepo) GetByID(ctx context.Context, id uint) (domain.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.rows {
		if ev.ID == id {
			return ev, nil
		}
	}
	return domain.Evidence{}, domain.ErrNotFound
}

func (r *memEvidenceRepo) ListByRequirement(ctx context.Context, requirementID string) ([]domain.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Evidence
	for _, ev := range r.rows {
		if ev.RequirementID == requirementID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *memEvidenceRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ev := range r.rows {
		if ev.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memFileStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	failOn    string
	removeErr error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (s *memFileStore) Save(requirementID, filename string, src io.Reader, at time.Time) (StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filename == s.failOn {
		return StoredFile{}, errors.New("disk full")
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return StoredFile{}, err
	}
	path := requirementID + "/" + at.Format("20060102T150405Z") + "__" + filename
	s.files[path] = data
	return StoredFile{Path: path, Size: int64(len(data))}, nil
}

func (s *memFileStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	if _, ok := s.files[path]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(s.files, path)
	return nil
}

type recordingOrphanSink struct {
	mu      sync.Mutex
	orphans []domain.OrphanedFile
	err     error
}

func (s *recordingOrphanSink) RecordOrphan(ctx context.Context, orphan domain.OrphanedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orphans = append(s.orphans, orphan)
	return s.err
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) Clock {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

func uploadOf(name, body string) UploadFile {
	return UploadFile{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewBufferString(body)), nil
		},
	}
}

func strPtr(s string) *string { return &s }

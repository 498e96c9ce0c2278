package usecase

import (
	"context"
	"io"
	"time"

	"certmanager/internal/domain"
)

type Clock func() time.Time

type ControlRepository interface {
	ListAll(ctx context.Context) ([]domain.Control, error)
	GetByID(ctx context.Context, id uint) (domain.Control, error)
	GetByRequirementID(ctx context.Context, requirementID string) (domain.Control, error)
	Create(ctx context.Context, c domain.Control) (domain.Control, error)
	SeedIfEmpty(ctx context.Context, controls []domain.Control) (int, error)
	UpdateTracking(ctx context.Context, id uint, update domain.ControlUpdate) (domain.Control, error)
	UpdateAssessment(ctx context.Context, id uint, objectives, methods *string) error
}

type TextLogRepository interface {
	Create(ctx context.Context, entry domain.TextLog) (domain.TextLog, error)
	ListByRequirement(ctx context.Context, requirementID string) ([]domain.TextLog, error)
	Delete(ctx context.Context, id uint) error
}

type EvidenceRepository interface {
	Create(ctx context.Context, ev domain.Evidence) (domain.Evidence, error)
	GetByID(ctx context.Context, id uint) (domain.Evidence, error)
	ListByRequirement(ctx context.Context, requirementID string) ([]domain.Evidence, error)
	Delete(ctx context.Context, id uint) error
}

type StoredFile struct {
	Path string
	Size int64
}

// FileStore keeps evidence bytes. Save measures the size from the stored
// file, not from the caller.
type FileStore interface {
	Save(requirementID, filename string, src io.Reader, at time.Time) (StoredFile, error)
	Remove(path string) error
}

// OrphanSink receives evidence files that outlived their metadata row.
type OrphanSink interface {
	RecordOrphan(ctx context.Context, orphan domain.OrphanedFile) error
}

func systemClock() time.Time {
	return time.Now().UTC()
}

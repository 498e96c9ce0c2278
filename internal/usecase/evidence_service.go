package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"time"

	"certmanager/internal/domain"

	"github.com/sirupsen/logrus"
)

type EvidenceService struct {
	Evidence EvidenceRepository
	Files    FileStore
	Orphans  OrphanSink
	Clock    Clock
	Log      logrus.FieldLogger
}

type UploadFile struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// UploadResult is the outcome of one file of a multi-file upload. Err is
// set on the file that stopped the upload.
type UploadResult struct {
	Filename string
	Evidence domain.Evidence
	Err      error
}

func NewEvidenceService(evidence EvidenceRepository, files FileStore, orphans OrphanSink, clock Clock, log logrus.FieldLogger) *EvidenceService {
	return &EvidenceService{
		Evidence: evidence,
		Files:    files,
		Orphans:  orphans,
		Clock:    clock,
		Log:      log,
	}
}

// Upload stores files one after another, committing each metadata row
// before starting the next file. The first failure ends the call; files
// already stored stay stored.
func (s *EvidenceService) Upload(ctx context.Context, requirementID string, files []UploadFile) ([]UploadResult, error) {
	if s == nil || s.Evidence == nil || s.Files == nil {
		return nil, errors.New("evidence service not configured")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", domain.ErrInvalidArgument)
	}
	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		ev, err := s.uploadOne(ctx, requirementID, f)
		results = append(results, UploadResult{Filename: f.Filename, Evidence: ev, Err: err})
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *EvidenceService) uploadOne(ctx context.Context, requirementID string, f UploadFile) (domain.Evidence, error) {
	if f.Open == nil {
		return domain.Evidence{}, fmt.Errorf("%w: file %q has no content", domain.ErrInvalidArgument, f.Filename)
	}
	src, err := f.Open()
	if err != nil {
		return domain.Evidence{}, fmt.Errorf("open upload %q: %w", f.Filename, err)
	}
	defer src.Close()

	at := s.now()
	stored, err := s.Files.Save(requirementID, f.Filename, src, at)
	if err != nil {
		return domain.Evidence{}, fmt.Errorf("store %q: %w", f.Filename, err)
	}
	ev, err := s.Evidence.Create(ctx, domain.Evidence{
		RequirementID: requirementID,
		Filename:      f.Filename,
		Size:          stored.Size,
		TS:            at,
		Path:          stored.Path,
	})
	if err != nil {
		return domain.Evidence{}, fmt.Errorf("record %q: %w", f.Filename, err)
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"requirement_id": requirementID,
			"evidence_id":    ev.ID,
			"size":           ev.Size,
		}).Info("evidence stored")
	}
	return ev, nil
}

func (s *EvidenceService) List(ctx context.Context, requirementID string) ([]domain.Evidence, error) {
	if s == nil || s.Evidence == nil {
		return nil, errors.New("evidence repository required")
	}
	rows, err := s.Evidence.ListByRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TS.Before(rows[j].TS)
	})
	return rows, nil
}

// Delete removes the stored file and then the metadata row. File removal
// errors never fail the call: a missing file is ignored and any other
// failure is handed to the orphan sink.
func (s *EvidenceService) Delete(ctx context.Context, id uint) error {
	if s == nil || s.Evidence == nil {
		return errors.New("evidence repository required")
	}
	ev, err := s.Evidence.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.Files != nil {
		if rmErr := s.Files.Remove(ev.Path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.reportOrphan(ctx, ev, rmErr)
		}
	}
	return s.Evidence.Delete(ctx, id)
}

func (s *EvidenceService) reportOrphan(ctx context.Context, ev domain.Evidence, cause error) {
	orphan := domain.OrphanedFile{
		EvidenceID:    ev.ID,
		RequirementID: ev.RequirementID,
		Path:          ev.Path,
		Reason:        cause.Error(),
		DetectedAt:    s.now(),
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"evidence_id": ev.ID,
			"path":        ev.Path,
			"error":       cause.Error(),
		}).Warn("evidence file removal failed; metadata deleted anyway")
	}
	if s.Orphans == nil {
		return
	}
	if err := s.Orphans.RecordOrphan(ctx, orphan); err != nil && s.Log != nil {
		s.Log.WithError(err).WithField("path", ev.Path).Warn("orphan sink rejected record")
	}
}

func (s *EvidenceService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return systemClock()
}

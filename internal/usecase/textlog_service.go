package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"certmanager/internal/domain"
)

type TextLogService struct {
	Logs  TextLogRepository
	Clock Clock
}

type TextLogInput struct {
	Kind string
	Text string
}

func NewTextLogService(logs TextLogRepository, clock Clock) *TextLogService {
	return &TextLogService{Logs: logs, Clock: clock}
}

// Add appends an entry. The requirement id is free-form and is not checked
// against the catalog.
func (s *TextLogService) Add(ctx context.Context, requirementID string, in TextLogInput) (domain.TextLog, error) {
	if s == nil || s.Logs == nil {
		return domain.TextLog{}, errors.New("text log repository required")
	}
	return s.Logs.Create(ctx, domain.TextLog{
		RequirementID: requirementID,
		Kind:          in.Kind,
		Text:          in.Text,
		TS:            s.now(),
	})
}

// List filters by kind when given, then sorts by timestamp keeping storage
// order for equal timestamps.
func (s *TextLogService) List(ctx context.Context, requirementID, kind string) ([]domain.TextLog, error) {
	if s == nil || s.Logs == nil {
		return nil, errors.New("text log repository required")
	}
	rows, err := s.Logs.ListByRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if kind != "" {
		kept := make([]domain.TextLog, 0, len(rows))
		for _, r := range rows {
			if r.Kind == kind {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TS.Before(rows[j].TS)
	})
	return rows, nil
}

func (s *TextLogService) Delete(ctx context.Context, id uint) error {
	if s == nil || s.Logs == nil {
		return errors.New("text log repository required")
	}
	return s.Logs.Delete(ctx, id)
}

func (s *TextLogService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return systemClock()
}

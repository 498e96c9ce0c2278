package usecase

import (
	"context"
	"errors"
	"strings"

	"certmanager/internal/domain"

	"github.com/sirupsen/logrus"
)

type CatalogService struct {
	Controls ControlRepository
	Log      logrus.FieldLogger
}

func NewCatalogService(controls ControlRepository, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{Controls: controls, Log: log}
}

// ListControls loads every control and filters in memory. Domain is a
// case-insensitive exact match; Text is a case-insensitive substring match
// against title, statement, requirement id and domain.
func (s *CatalogService) ListControls(ctx context.Context, filter domain.ControlFilter) ([]domain.Control, error) {
	if s == nil || s.Controls == nil {
		return nil, errors.New("control repository required")
	}
	rows, err := s.Controls.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Domain != "" {
		want := strings.ToLower(filter.Domain)
		kept := make([]domain.Control, 0, len(rows))
		for _, c := range rows {
			if strings.ToLower(c.Domain) == want {
				kept = append(kept, c)
			}
		}
		rows = kept
	}
	if filter.Text != "" {
		needle := strings.ToLower(strings.TrimSpace(filter.Text))
		kept := make([]domain.Control, 0, len(rows))
		for _, c := range rows {
			if matchesText(c, needle) {
				kept = append(kept, c)
			}
		}
		rows = kept
	}
	return rows, nil
}

func matchesText(c domain.Control, needle string) bool {
	for _, field := range []string{c.Title, c.Statement, c.RequirementID, c.Domain} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *CatalogService) GetControl(ctx context.Context, id uint) (domain.Control, error) {
	if s == nil || s.Controls == nil {
		return domain.Control{}, errors.New("control repository required")
	}
	return s.Controls.GetByID(ctx, id)
}

func (s *CatalogService) UpdateControl(ctx context.Context, id uint, update domain.ControlUpdate) (domain.Control, error) {
	if s == nil || s.Controls == nil {
		return domain.Control{}, errors.New("control repository required")
	}
	updated, err := s.Controls.UpdateTracking(ctx, id, update)
	if err != nil {
		return domain.Control{}, err
	}
	if s.Log != nil && !update.Empty() {
		s.Log.WithFields(logrus.Fields{
			"control_id":     updated.ID,
			"requirement_id": updated.RequirementID,
		}).Info("control tracking fields updated")
	}
	return updated, nil
}

// Seed inserts the catalog when the store holds no controls at all.
func (s *CatalogService) Seed(ctx context.Context, catalog []domain.Control) (int, error) {
	if s == nil || s.Controls == nil {
		return 0, errors.New("control repository required")
	}
	inserted, err := s.Controls.SeedIfEmpty(ctx, catalog)
	if err != nil {
		return 0, err
	}
	if s.Log != nil {
		if inserted > 0 {
			s.Log.WithField("inserted", inserted).Info("catalog seeded")
		} else {
			s.Log.Debug("catalog already present; seeding skipped")
		}
	}
	return inserted, nil
}

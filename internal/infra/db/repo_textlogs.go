package db

import (
	"context"

	"certmanager/internal/domain"

	"gorm.io/gorm"
)

type TextLogRepository struct {
	db *gorm.DB
}

func NewTextLogRepository(db *gorm.DB) *TextLogRepository {
	return &TextLogRepository{db: db}
}

func (r *TextLogRepository) Create(ctx context.Context, entry domain.TextLog) (domain.TextLog, error) {
	if r.db == nil {
		return domain.TextLog{}, errDBUnavailable
	}
	m := TextLogModel{
		RequirementID: entry.RequirementID,
		Kind:          entry.Kind,
		Text:          entry.Text,
		TS:            entry.TS.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.TextLog{}, err
	}
	return toDomainTextLog(m), nil
}

// ListByRequirement returns entries for the exact requirement id in storage
// order; callers apply their own filtering and sorting.
func (r *TextLogRepository) ListByRequirement(ctx context.Context, requirementID string) ([]domain.TextLog, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	rows := make([]TextLogModel, 0)
	err := r.db.WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.TextLog, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainTextLog(m))
	}
	return out, nil
}

func (r *TextLogRepository) Delete(ctx context.Context, id uint) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TextLogModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainTextLog(m TextLogModel) domain.TextLog {
	return domain.TextLog{
		ID:            m.ID,
		RequirementID: m.RequirementID,
		Kind:          m.Kind,
		Text:          m.Text,
		TS:            m.TS.UTC(),
	}
}

package db

import (
	"context"

	"certmanager/internal/domain"

	"gorm.io/gorm"
)

type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

func (r *EvidenceRepository) Create(ctx context.Context, ev domain.Evidence) (domain.Evidence, error) {
	if r.db == nil {
		return domain.Evidence{}, errDBUnavailable
	}
	m := EvidenceModel{
		RequirementID: ev.RequirementID,
		Filename:      ev.Filename,
		Size:          ev.Size,
		TS:            ev.TS.UTC(),
		Path:          ev.Path,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Evidence{}, err
	}
	return toDomainEvidence(m), nil
}

func (r *EvidenceRepository) GetByID(ctx context.Context, id uint) (domain.Evidence, error) {
	if r.db == nil {
		return domain.Evidence{}, errDBUnavailable
	}
	var m EvidenceModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Evidence{}, mapNotFound(err)
	}
	return toDomainEvidence(m), nil
}

func (r *EvidenceRepository) ListByRequirement(ctx context.Context, requirementID string) ([]domain.Evidence, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	rows := make([]EvidenceModel, 0)
	err := r.db.WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Evidence, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainEvidence(m))
	}
	return out, nil
}

func (r *EvidenceRepository) Delete(ctx context.Context, id uint) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&EvidenceModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainEvidence(m EvidenceModel) domain.Evidence {
	return domain.Evidence{
		ID:            m.ID,
		RequirementID: m.RequirementID,
		Filename:      m.Filename,
		Size:          m.Size,
		TS:            m.TS.UTC(),
		Path:          m.Path,
	}
}

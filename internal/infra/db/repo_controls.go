package db

import (
	"context"

	"certmanager/internal/domain"

	"gorm.io/gorm"
)

type ControlRepository struct {
	db *gorm.DB
}

func NewControlRepository(db *gorm.DB) *ControlRepository {
	return &ControlRepository{db: db}
}

// ListAll returns every control in insertion order.
func (r *ControlRepository) ListAll(ctx context.Context) ([]domain.Control, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	rows := make([]ControlModel, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Control, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainControl(m))
	}
	return out, nil
}

func (r *ControlRepository) GetByID(ctx context.Context, id uint) (domain.Control, error) {
	if r.db == nil {
		return domain.Control{}, errDBUnavailable
	}
	var m ControlModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Control{}, mapNotFound(err)
	}
	return toDomainControl(m), nil
}

func (r *ControlRepository) GetByRequirementID(ctx context.Context, requirementID string) (domain.Control, error) {
	if r.db == nil {
		return domain.Control{}, errDBUnavailable
	}
	var m ControlModel
	if err := r.db.WithContext(ctx).First(&m, "requirement_id = ?", requirementID).Error; err != nil {
		return domain.Control{}, mapNotFound(err)
	}
	return toDomainControl(m), nil
}

func (r *ControlRepository) Create(ctx context.Context, c domain.Control) (domain.Control, error) {
	if r.db == nil {
		return domain.Control{}, errDBUnavailable
	}
	m := toControlModel(c)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Control{}, err
	}
	return toDomainControl(m), nil
}

// SeedIfEmpty inserts controls in one transaction when the table has no rows
// and reports how many were inserted. A table with any row is left alone.
func (r *ControlRepository) SeedIfEmpty(ctx context.Context, controls []domain.Control) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ControlModel{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(controls) == 0 {
			return nil
		}
		models := make([]ControlModel, 0, len(controls))
		for _, c := range controls {
			m := toControlModel(c)
			m.ID = 0
			models = append(models, m)
		}
		if err := tx.CreateInBatches(&models, 100).Error; err != nil {
			return err
		}
		inserted = len(models)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpdateTracking applies the sent tracking fields and returns the stored row.
func (r *ControlRepository) UpdateTracking(ctx context.Context, id uint, update domain.ControlUpdate) (domain.Control, error) {
	if r.db == nil {
		return domain.Control{}, errDBUnavailable
	}
	var out domain.Control
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m ControlModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return mapNotFound(err)
		}
		if !update.Empty() {
			values := map[string]any{}
			if update.C3PAOFinding != nil {
				values["c3pao_finding"] = *update.C3PAOFinding
			}
			if update.SelfImplStatus != nil {
				values["self_impl_status"] = *update.SelfImplStatus
			}
			if err := tx.Model(&ControlModel{}).Where("id = ?", id).Updates(values).Error; err != nil {
				return err
			}
			if err := tx.First(&m, "id = ?", id).Error; err != nil {
				return mapNotFound(err)
			}
		}
		out = toDomainControl(m)
		return nil
	})
	if err != nil {
		return domain.Control{}, err
	}
	return out, nil
}

// UpdateAssessment overwrites objectives and methods; nil stores NULL.
func (r *ControlRepository) UpdateAssessment(ctx context.Context, id uint, objectives, methods *string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Model(&ControlModel{}).Where("id = ?", id).Updates(map[string]any{
		"assessment_objectives": copyString(objectives),
		"assessment_methods":    copyString(methods),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toControlModel(c domain.Control) ControlModel {
	return ControlModel{
		ID:                   c.ID,
		RequirementID:        c.RequirementID,
		Domain:               c.Domain,
		Title:                c.Title,
		Statement:            c.Statement,
		Discussion:           copyString(c.Discussion),
		FurtherDiscussion:    copyString(c.FurtherDiscussion),
		KeyReferences:        copyString(c.KeyReferences),
		AssessmentObjectives: copyString(c.AssessmentObjectives),
		AssessmentMethods:    copyString(c.AssessmentMethods),
		C3PAOFinding:         copyString(c.C3PAOFinding),
		SelfImplStatus:       copyString(c.SelfImplStatus),
	}
}

func toDomainControl(m ControlModel) domain.Control {
	return domain.Control{
		ID:                   m.ID,
		RequirementID:        m.RequirementID,
		Domain:               m.Domain,
		Title:                m.Title,
		Statement:            m.Statement,
		Discussion:           m.Discussion,
		FurtherDiscussion:    m.FurtherDiscussion,
		KeyReferences:        m.KeyReferences,
		AssessmentObjectives: m.AssessmentObjectives,
		AssessmentMethods:    m.AssessmentMethods,
		C3PAOFinding:         m.C3PAOFinding,
		SelfImplStatus:       m.SelfImplStatus,
	}
}

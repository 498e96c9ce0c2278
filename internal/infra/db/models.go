package db

import "time"

type ControlModel struct {
	ID                   uint    `gorm:"primaryKey"`
	RequirementID        string  `gorm:"uniqueIndex;not null"`
	Domain               string  `gorm:"not null"`
	Title                string  `gorm:"not null"`
	Statement            string  `gorm:"not null"`
	Discussion           *string `gorm:"type:text"`
	FurtherDiscussion    *string `gorm:"type:text"`
	KeyReferences        *string `gorm:"type:text"`
	AssessmentObjectives *string `gorm:"type:text"`
	AssessmentMethods    *string `gorm:"type:text"`
	C3PAOFinding         *string `gorm:"column:c3pao_finding;index"`
	SelfImplStatus       *string `gorm:"column:self_impl_status;index"`
}

func (ControlModel) TableName() string { return "controls" }

type TextLogModel struct {
	ID            uint      `gorm:"primaryKey"`
	RequirementID string    `gorm:"index;not null"`
	Kind          string    `gorm:"index;not null"`
	Text          string    `gorm:"type:text;not null"`
	TS            time.Time `gorm:"column:ts;not null"`
}

func (TextLogModel) TableName() string { return "text_logs" }

type EvidenceModel struct {
	ID            uint      `gorm:"primaryKey"`
	RequirementID string    `gorm:"index;not null"`
	Filename      string    `gorm:"not null"`
	Size          int64     `gorm:"not null"`
	TS            time.Time `gorm:"column:ts;not null"`
	Path          string    `gorm:"not null"`
}

func (EvidenceModel) TableName() string { return "evidence" }

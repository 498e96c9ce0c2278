package domain

import "time"

type TextLog struct {
	ID            uint
	RequirementID string
	Kind          string
	Text          string
	TS            time.Time
}

type Evidence struct {
	ID            uint
	RequirementID string
	Filename      string
	Size          int64
	TS            time.Time
	Path          string
}

// OrphanedFile describes an evidence file whose metadata row was deleted
// while the file itself could not be removed.
type OrphanedFile struct {
	EvidenceID    uint      `json:"evidence_id"`
	RequirementID string    `json:"requirement_id"`
	Path          string    `json:"path"`
	Reason        string    `json:"reason"`
	DetectedAt    time.Time `json:"detected_at"`
}

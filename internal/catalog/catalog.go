// Package catalog holds the CMMC Level 2 / NIST SP 800-171 requirement list
// that seeds an empty store.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"certmanager/internal/domain"
)

//go:embed catalog.json
var catalogJSON []byte

type entry struct {
	RequirementID        string  `json:"requirement_id"`
	Domain               string  `json:"domain"`
	Title                string  `json:"title"`
	Statement            string  `json:"statement"`
	Discussion           *string `json:"discussion"`
	FurtherDiscussion    *string `json:"further_discussion"`
	KeyReferences        *string `json:"key_references"`
	AssessmentObjectives *string `json:"assessment_objectives"`
	AssessmentMethods    *string `json:"assessment_methods"`
}

// Controls decodes the embedded catalog in its listed order.
func Controls() ([]domain.Control, error) {
	var entries []entry
	if err := json.Unmarshal(catalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]domain.Control, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Control{
			RequirementID:        e.RequirementID,
			Domain:               e.Domain,
			Title:                e.Title,
			Statement:            e.Statement,
			Discussion:           e.Discussion,
			FurtherDiscussion:    e.FurtherDiscussion,
			KeyReferences:        e.KeyReferences,
			AssessmentObjectives: e.AssessmentObjectives,
			AssessmentMethods:    e.AssessmentMethods,
		})
	}
	return out, nil
}

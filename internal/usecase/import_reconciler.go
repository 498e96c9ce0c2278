package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"certmanager/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	ColumnRequirementID        = "requirement_id"
	ColumnAssessmentObjectives = "assessment_objectives"
	ColumnAssessmentMethods    = "assessment_methods"
)

// Table is a sheet of string cells. Rows may be shorter than Header.
type Table struct {
	Header []string
	Rows   [][]string
}

type ImportOutcome string

const (
	ImportCreated ImportOutcome = "created"
	ImportUpdated ImportOutcome = "updated"
	ImportSkipped ImportOutcome = "skipped"
	ImportFailed  ImportOutcome = "failed"
)

type ImportRow struct {
	// Line is the 1-based data row index, header excluded.
	Line          int
	RequirementID string
	Outcome       ImportOutcome
	Err           error
}

type ImportReport struct {
	Rows    []ImportRow
	Created int
	Updated int
	Skipped int
	Failed  int
}

func (r *ImportReport) add(row ImportRow) {
	r.Rows = append(r.Rows, row)
	switch row.Outcome {
	case ImportCreated:
		r.Created++
	case ImportUpdated:
		r.Updated++
	case ImportSkipped:
		r.Skipped++
	case ImportFailed:
		r.Failed++
	}
}

type ImportReconciler struct {
	Controls ControlRepository
	Log      logrus.FieldLogger
}

func NewImportReconciler(controls ControlRepository, log logrus.FieldLogger) *ImportReconciler {
	return &ImportReconciler{Controls: controls, Log: log}
}

type columnIndex struct {
	requirementID int
	objectives    int
	methods       int
}

func resolveColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}
	var idx columnIndex
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{ColumnRequirementID, &idx.requirementID},
		{ColumnAssessmentObjectives, &idx.objectives},
		{ColumnAssessmentMethods, &idx.methods},
	} {
		pos, ok := positions[col.name]
		if !ok {
			return columnIndex{}, fmt.Errorf("%w: missing required column %q", domain.ErrValidation, col.name)
		}
		*col.dst = pos
	}
	return idx, nil
}

// Import upserts assessment objectives and methods for every row. Rows are
// committed one at a time; a storage failure stops the run and the report
// covers the rows handled so far.
func (r *ImportReconciler) Import(ctx context.Context, table Table) (ImportReport, error) {
	var report ImportReport
	if r == nil || r.Controls == nil {
		return report, errors.New("control repository required")
	}
	cols, err := resolveColumns(table.Header)
	if err != nil {
		return report, err
	}
	for i, cells := range table.Rows {
		row := ImportRow{Line: i + 1, RequirementID: strings.TrimSpace(cell(cells, cols.requirementID))}
		if row.RequirementID == "" {
			row.Outcome = ImportSkipped
			report.add(row)
			continue
		}
		outcome, err := r.upsert(ctx, row.RequirementID, optionalCell(cells, cols.objectives), optionalCell(cells, cols.methods))
		if err != nil {
			row.Outcome = ImportFailed
			row.Err = err
			report.add(row)
			r.logComplete(report)
			return report, fmt.Errorf("import row %d (%s): %w", row.Line, row.RequirementID, err)
		}
		row.Outcome = outcome
		report.add(row)
	}
	r.logComplete(report)
	return report, nil
}

func (r *ImportReconciler) upsert(ctx context.Context, requirementID string, objectives, methods *string) (ImportOutcome, error) {
	existing, err := r.Controls.GetByRequirementID(ctx, requirementID)
	switch {
	case err == nil:
		if err := r.Controls.UpdateAssessment(ctx, existing.ID, objectives, methods); err != nil {
			return ImportFailed, err
		}
		return ImportUpdated, nil
	case errors.Is(err, domain.ErrNotFound):
		c := domain.PlaceholderControl(requirementID)
		c.AssessmentObjectives = objectives
		c.AssessmentMethods = methods
		if _, err := r.Controls.Create(ctx, c); err != nil {
			return ImportFailed, err
		}
		return ImportCreated, nil
	default:
		return ImportFailed, err
	}
}

func (r *ImportReconciler) logComplete(report ImportReport) {
	if r.Log == nil {
		return
	}
	r.Log.WithFields(logrus.Fields{
		"created": report.Created,
		"updated": report.Updated,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("import complete")
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// optionalCell maps a blank or missing cell to nil.
func optionalCell(cells []string, i int) *string {
	v := cell(cells, i)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

package usecase

import (
	"context"
	"errors"

	"certmanager/internal/domain"
)

type DashboardService struct {
	Controls ControlRepository
}

func NewDashboardService(controls ControlRepository) *DashboardService {
	return &DashboardService{Controls: controls}
}

// Dashboard counts controls by raw finding and raw implementation status.
// Keys are compared byte for byte; unset and empty values land in
// UNASSIGNED. Every recognized bucket is present, zero or not.
func (s *DashboardService) Dashboard(ctx context.Context) (domain.DashboardCounts, error) {
	if s == nil || s.Controls == nil {
		return domain.DashboardCounts{}, errors.New("control repository required")
	}
	rows, err := s.Controls.ListAll(ctx)
	if err != nil {
		return domain.DashboardCounts{}, err
	}
	out := domain.DashboardCounts{
		Total: len(rows),
		C3PAO: make(map[string]int, len(domain.C3PAOBuckets)),
		Impl:  make(map[string]int, len(domain.ImplStatusBuckets)),
	}
	for _, c := range rows {
		out.C3PAO[bucketOf(c.C3PAOFinding)]++
		out.Impl[bucketOf(c.SelfImplStatus)]++
	}
	zeroFill(out.C3PAO, domain.C3PAOBuckets)
	zeroFill(out.Impl, domain.ImplStatusBuckets)
	return out, nil
}

func bucketOf(value *string) string {
	if value == nil || *value == "" {
		return domain.UnassignedBucket
	}
	return *value
}

func zeroFill(counts map[string]int, buckets []string) {
	for _, b := range buckets {
		if _, ok := counts[b]; !ok {
			counts[b] = 0
		}
	}
}

package usecase

import (
	"context"
	"testing"

	"certmanager/internal/domain"
)

func TestDashboard_EmptyStoreZeroFilled(t *testing.T) {
	svc := NewDashboardService(&memControlRepo{})

	counts, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if counts.Total != 0 {
		t.Fatalf("expected total 0, got %d", counts.Total)
	}
	for _, b := range domain.C3PAOBuckets {
		if v, ok := counts.C3PAO[b]; !ok || v != 0 {
			t.Fatalf("expected c3pao bucket %q present with 0, got %d (present=%v)", b, v, ok)
		}
	}
	for _, b := range domain.ImplStatusBuckets {
		if v, ok := counts.Impl[b]; !ok || v != 0 {
			t.Fatalf("expected impl bucket %q present with 0, got %d (present=%v)", b, v, ok)
		}
	}
	if len(counts.C3PAO) != len(domain.C3PAOBuckets) || len(counts.Impl) != len(domain.ImplStatusBuckets) {
		t.Fatalf("expected only recognized buckets on empty store")
	}
}

func TestDashboard_AllImplemented(t *testing.T) {
	svc, _ := seededCatalogService(t)
	ctx := context.Background()
	for id := uint(1); id <= 4; id++ {
		if _, err := svc.UpdateControl(ctx, id, domain.ControlUpdate{SelfImplStatus: strPtr("Implemented")}); err != nil {
			t.Fatalf("update %d: %v", id, err)
		}
	}

	counts, err := NewDashboardService(svc.Controls).Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if counts.Total != 4 {
		t.Fatalf("expected total 4, got %d", counts.Total)
	}
	if counts.Impl["Implemented"] != 4 {
		t.Fatalf("expected 4 implemented, got %d", counts.Impl["Implemented"])
	}
	for _, b := range domain.ImplStatusBuckets {
		if b != "Implemented" && counts.Impl[b] != 0 {
			t.Fatalf("expected %q to be 0, got %d", b, counts.Impl[b])
		}
	}
	if counts.C3PAO[domain.UnassignedBucket] != 4 {
		t.Fatalf("expected 4 unassigned findings, got %d", counts.C3PAO[domain.UnassignedBucket])
	}
}

func TestDashboard_RawValuesKept(t *testing.T) {
	repo := &memControlRepo{}
	ctx := context.Background()
	for _, c := range []domain.Control{
		{RequirementID: "A", C3PAOFinding: strPtr("MET")},
		{RequirementID: "B", C3PAOFinding: strPtr("met")},
		{RequirementID: "C", C3PAOFinding: strPtr("")},
		{RequirementID: "D", SelfImplStatus: strPtr("Maybe Later")},
	} {
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	counts, err := NewDashboardService(repo).Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if counts.C3PAO["MET"] != 1 || counts.C3PAO["met"] != 1 {
		t.Fatalf("expected case-sensitive buckets, got %v", counts.C3PAO)
	}
	if counts.C3PAO[domain.UnassignedBucket] != 2 {
		t.Fatalf("expected empty and unset findings in UNASSIGNED, got %d", counts.C3PAO[domain.UnassignedBucket])
	}
	if counts.Impl["Maybe Later"] != 1 {
		t.Fatalf("expected unexpected status kept as its own bucket")
	}
	if counts.Impl[domain.UnassignedBucket] != 3 {
		t.Fatalf("expected 3 unassigned statuses, got %d", counts.Impl[domain.UnassignedBucket])
	}
	sum := 0
	for _, v := range counts.C3PAO {
		sum += v
	}
	if sum != counts.Total {
		t.Fatalf("expected c3pao buckets to sum to total, got %d vs %d", sum, counts.Total)
	}
}

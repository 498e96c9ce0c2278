package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"certmanager/internal/domain"
)

func TestTextLogRepository_CreateListDelete(t *testing.T) {
	store := setupTestStore(t)
	repo := NewTextLogRepository(store.DB)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, domain.TextLog{RequirementID: "AC.L2-3.1.1", Kind: "note", Text: "one", TS: base})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if _, err := repo.Create(ctx, domain.TextLog{RequirementID: "AC.L2-3.1.1", Kind: "solution", Text: "two", TS: base.Add(-time.Hour)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.TextLog{RequirementID: "AC.L2-3.1.2", Kind: "note", Text: "other", TS: base}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := repo.ListByRequirement(ctx, "AC.L2-3.1.1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].Text != "one" || rows[1].Text != "two" {
		t.Fatalf("expected storage order for exact requirement, got %+v", rows)
	}
	if !rows[0].TS.Equal(base) {
		t.Fatalf("expected timestamp round trip, got %s", rows[0].TS)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestEvidenceRepository_CreateGetListDelete(t *testing.T) {
	store := setupTestStore(t)
	repo := NewEvidenceRepository(store.DB)
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, domain.Evidence{
		RequirementID: "AC.L2-3.1.1",
		Filename:      "policy.pdf",
		Size:          42,
		TS:            ts,
		Path:          "/uploads/AC.L2-3.1.1/20240501T120000Z__policy.pdf",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "policy.pdf" || got.Size != 42 || got.Path != created.Path {
		t.Fatalf("unexpected evidence: %+v", got)
	}

	list, err := repo.ListByRequirement(ctx, "AC.L2-3.1.1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one row, got %d", len(list))
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

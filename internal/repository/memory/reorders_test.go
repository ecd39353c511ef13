package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
)

func TestReordersCreateAssignsSequentialIDs(t *testing.T) {
	reorders := NewReorders()
	ctx := context.Background()

	first, err := reorders.Create(ctx, 1, 100001, 5)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := reorders.Create(ctx, 2, 100002, 10)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if first.ReorderID != 1 || second.ReorderID != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", first.ReorderID, second.ReorderID)
	}
	if first.Status != models.ReorderNew || second.Status != models.ReorderNew {
		t.Error("created reorders must start in NEW")
	}
}

func TestReordersCreateRejectsInvalidQuantity(t *testing.T) {
	reorders := NewReorders()

	if _, err := reorders.Create(context.Background(), 1, 100001, 0); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestReordersGetByID(t *testing.T) {
	reorders := NewReorders()
	ctx := context.Background()

	created, _ := reorders.Create(ctx, 1, 100001, 5)

	found, err := reorders.GetByID(ctx, 1, created.ReorderID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found.ArticleID != 100001 || found.Quantity != 5 {
		t.Errorf("unexpected reorder: %+v", found)
	}

	if _, err := reorders.GetByID(ctx, 2, created.ReorderID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("reorder must be branch-scoped, got %v", err)
	}
}

func TestReordersGetAllByBranchStatusFilter(t *testing.T) {
	reorders := NewReorders()
	ctx := context.Background()

	first, _ := reorders.Create(ctx, 1, 100001, 5)
	reorders.Create(ctx, 1, 100002, 10)
	reorders.Create(ctx, 2, 100003, 15)
	reorders.UpdateStatus(ctx, 1, first.ReorderID, models.ReorderWaiting)

	all, err := reorders.GetAllByBranch(ctx, 1, "")
	if err != nil {
		t.Fatalf("getAllByBranch failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 reorders for branch 1, got %d", len(all))
	}

	waiting, err := reorders.GetAllByBranch(ctx, 1, models.ReorderWaiting)
	if err != nil {
		t.Fatalf("getAllByBranch failed: %v", err)
	}
	if len(waiting) != 1 || waiting[0].ReorderID != first.ReorderID {
		t.Errorf("unexpected filter result: %+v", waiting)
	}
}

func TestReordersGetAllByStatusSpansBranches(t *testing.T) {
	reorders := NewReorders()
	ctx := context.Background()

	reorders.Create(ctx, 1, 100001, 5)
	reorders.Create(ctx, 2, 100002, 10)

	matches, err := reorders.GetAllByStatus(ctx, models.ReorderNew)
	if err != nil {
		t.Fatalf("getAllByStatus failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].BranchID == matches[1].BranchID {
		t.Error("expected reorders from both branches")
	}
}

func TestReordersUpdateStatusMissing(t *testing.T) {
	reorders := NewReorders()

	updated, err := reorders.UpdateStatus(context.Background(), 1, 42, models.ReorderWaiting)
	if err != nil {
		t.Fatalf("updateStatus failed: %v", err)
	}
	if updated {
		t.Error("updating a missing reorder must report false")
	}
}

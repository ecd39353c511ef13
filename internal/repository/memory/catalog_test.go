package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
)

const branchID = int64(1)

func newArticle(t *testing.T, articleID int64, minStock, stock, reserved int) models.Article {
	t.Helper()
	article, err := models.NewArticle(articleID, "Test", decimal.NewFromInt(2), minStock, stock, reserved)
	if err != nil {
		t.Fatalf("failed to build article: %v", err)
	}
	return article
}

func TestCatalogCreateIsIdempotent(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	first, err := catalog.Create(ctx, branchID, newArticle(t, 100001, 1, 5, 0))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	replacement := newArticle(t, 100001, 9, 9, 9)
	replacement.Name = "Other"
	second, err := catalog.Create(ctx, branchID, replacement)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if second.Name != first.Name || second.Stock != first.Stock || second.MinStock != first.MinStock {
		t.Errorf("second create must return the stored article unchanged, got %+v", second)
	}

	stored, err := catalog.GetByID(ctx, branchID, 100001)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Stock != 5 {
		t.Errorf("stored article was overwritten, stock = %d", stored.Stock)
	}
}

func TestCatalogGetByIDUnknown(t *testing.T) {
	catalog := NewCatalog()

	if _, err := catalog.GetByID(context.Background(), branchID, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := catalog.GetByID(context.Background(), 99, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown branch, got %v", err)
	}
}

func TestCatalogGetByIDsOmitsMissing(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.Create(ctx, branchID, newArticle(t, 100001, 1, 5, 0))
	catalog.Create(ctx, branchID, newArticle(t, 100002, 1, 5, 0))

	found, err := catalog.GetByIDs(ctx, branchID, []int64{100001, 100002, 100003})
	if err != nil {
		t.Fatalf("getByIDs failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(found))
	}
	if _, ok := found[100003]; ok {
		t.Error("missing id must be omitted, not present")
	}
}

func TestCatalogUpdatePreservesQuantities(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.Create(ctx, branchID, newArticle(t, 100001, 1, 5, 2))

	updated, err := catalog.Update(ctx, branchID, 100001, "Renamed", decimal.NewFromInt(9), 4)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Renamed" || updated.MinStock != 4 {
		t.Errorf("descriptive fields not replaced: %+v", updated)
	}
	if updated.Stock != 5 || updated.Reserved != 2 {
		t.Errorf("stock/reserved must be preserved, got stock=%d reserved=%d", updated.Stock, updated.Reserved)
	}

	if _, err := catalog.Update(ctx, branchID, 100002, "X", decimal.NewFromInt(1), 0); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown article, got %v", err)
	}
}

func TestCatalogDelete(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.Create(ctx, branchID, newArticle(t, 100001, 1, 5, 0))

	deleted, err := catalog.Delete(ctx, branchID, 100001)
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %v %v", deleted, err)
	}

	deleted, err = catalog.Delete(ctx, branchID, 100001)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted {
		t.Error("deleting a missing article must report false")
	}
}

func TestCatalogChangeStockRejectsNegativeResult(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.Create(ctx, branchID, newArticle(t, 100001, 1, 5, 0))

	ok, err := catalog.ChangeStock(ctx, branchID, 100001, -5)
	if err != nil || !ok {
		t.Fatalf("draining stock to zero must succeed, got %v %v", ok, err)
	}

	ok, err = catalog.ChangeStock(ctx, branchID, 100001, -1)
	if err != nil {
		t.Fatalf("changeStock failed: %v", err)
	}
	if ok {
		t.Error("overdraw must be rejected")
	}

	article, _ := catalog.GetByID(ctx, branchID, 100001)
	if article.Stock != 0 {
		t.Errorf("rejected adjustment must not mutate, stock = %d", article.Stock)
	}
}

func TestCatalogChangeReservedRejectsAbsentArticle(t *testing.T) {
	catalog := NewCatalog()

	ok, err := catalog.ChangeReserved(context.Background(), branchID, 100001, 1)
	if err != nil {
		t.Fatalf("changeReserved failed: %v", err)
	}
	if ok {
		t.Error("adjusting a missing article must be rejected")
	}
}

func TestCatalogChangeStockConcurrent(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.Create(ctx, branchID, newArticle(t, 100001, 0, 20, 0))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			catalog.ChangeStock(ctx, branchID, 100001, -1)
		}()
	}
	wg.Wait()

	article, err := catalog.GetByID(ctx, branchID, 100001)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if article.Stock != 0 {
		t.Errorf("expected stock 0 after 50 competing decrements of 20, got %d", article.Stock)
	}
}

func TestCatalogGetLowStockSpansBranches(t *testing.T) {
	catalog := NewCatalog()
	ctx := context.Background()

	catalog.Create(ctx, 1, newArticle(t, 100001, 3, 5, 0))  // sellable 5, fine
	catalog.Create(ctx, 1, newArticle(t, 100002, 3, 5, 3))  // sellable 2, low
	catalog.Create(ctx, 2, newArticle(t, 100003, 5, 7, 10)) // sellable -3, low

	low, err := catalog.GetLowStock(ctx)
	if err != nil {
		t.Fatalf("getLowStock failed: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low stock articles, got %d", len(low))
	}

	branches := map[int64]int64{}
	for _, entry := range low {
		branches[entry.Article.ArticleID] = entry.BranchID
	}
	if branches[100002] != 1 || branches[100003] != 2 {
		t.Errorf("unexpected low stock result: %v", branches)
	}
}

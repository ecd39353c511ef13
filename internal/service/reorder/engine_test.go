package reorder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository/memory"
)

const branchID = int64(1)

// recordingPublisher collects published events and can simulate a broken sink.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, event models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("sink down")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	catalog   *memory.Catalog
	reorders  *memory.Reorders
	publisher *recordingPublisher
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:   memory.NewCatalog(),
		reorders:  memory.NewReorders(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(f.catalog, f.reorders, f.publisher, zap.NewNop())

	f.addArticle(t, 100001, "Article 1", "5.25", 3, 5, 0)
	f.addArticle(t, 100002, "Article 2", "9.95", 5, 7, 0)
	return f
}

func (f *fixture) addArticle(t *testing.T, articleID int64, name, price string, minStock, stock, reserved int) {
	t.Helper()
	value, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("bad price %q: %v", price, err)
	}
	article, err := models.NewArticle(articleID, name, value, minStock, stock, reserved)
	if err != nil {
		t.Fatalf("failed to build article: %v", err)
	}
	if _, err := f.catalog.Create(context.Background(), branchID, article); err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
}

func (f *fixture) mustGetReorder(t *testing.T, reorderID int64) models.Reorder {
	t.Helper()
	reorder, err := f.reorders.GetByID(context.Background(), branchID, reorderID)
	if err != nil {
		t.Fatalf("failed to load reorder %d: %v", reorderID, err)
	}
	return reorder
}

func (f *fixture) branchReorders(t *testing.T) []models.Reorder {
	t.Helper()
	all, err := f.reorders.GetAllByBranch(context.Background(), branchID, "")
	if err != nil {
		t.Fatalf("failed to list reorders: %v", err)
	}
	return all
}

func TestRunWithoutLowStockCreatesNothing(t *testing.T) {
	f := newFixture(t)

	report := f.svc.Run(context.Background())

	if got := f.branchReorders(t); len(got) != 0 {
		t.Errorf("expected no reorders, got %d", len(got))
	}
	if report.Created != 0 || report.Placed != 0 || report.Reconciled != 0 || report.Failures != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestRunCreatesReordersForLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.ChangeStock(ctx, branchID, 100001, -3)    // sellable 2 < 3
	f.catalog.ChangeReserved(ctx, branchID, 100002, 10) // sellable -3 < 5

	report := f.svc.Run(ctx)

	if got := f.branchReorders(t); len(got) != 2 {
		t.Fatalf("expected 2 reorders, got %d", len(got))
	}

	first := f.mustGetReorder(t, 1)
	if first.ArticleID != 100001 || first.Quantity != 4 {
		t.Errorf("expected reorder 1 for article 100001 with quantity 4, got %+v", first)
	}
	second := f.mustGetReorder(t, 2)
	if second.ArticleID != 100002 || second.Quantity != 13 {
		t.Errorf("expected reorder 2 for article 100002 with quantity 13, got %+v", second)
	}

	if first.Status != models.ReorderWaiting || second.Status != models.ReorderWaiting {
		t.Error("a pass must place every reorder it creates")
	}
	if report.Created != 2 || report.Placed != 2 {
		t.Errorf("expected 2 created and 2 placed, got %+v", report)
	}
}

func TestRunNetsDeficitAgainstOutstandingOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.ChangeStock(ctx, branchID, 100001, -3)
	f.catalog.ChangeReserved(ctx, branchID, 100002, 10)
	f.svc.Run(ctx)

	if got := f.branchReorders(t); len(got) != 2 {
		t.Fatalf("expected 2 reorders after first pass, got %d", len(got))
	}

	// Article 100001: sellable drops to -1, but 4 pieces are already on
	// order, so the effective sellable of 3 reaches the threshold and no new
	// order is raised. Article 100002: sellable -9 against 13 on order
	// leaves an effective 4 below the threshold of 5, ordered up to 10.
	f.catalog.ChangeReserved(ctx, branchID, 100001, 3)
	f.catalog.ChangeStock(ctx, branchID, 100002, -6)
	report := f.svc.Run(ctx)

	all := f.branchReorders(t)
	if len(all) != 3 {
		t.Fatalf("expected 3 reorders after second pass, got %d", len(all))
	}

	third := f.mustGetReorder(t, 3)
	if third.ArticleID != 100002 || third.Quantity != 6 {
		t.Errorf("expected reorder 3 for article 100002 with quantity 6, got %+v", third)
	}
	if report.Created != 1 {
		t.Errorf("expected 1 created on second pass, got %+v", report)
	}

	for _, reorder := range all {
		if reorder.Quantity < 1 {
			t.Errorf("reorder %d has non-positive quantity %d", reorder.ReorderID, reorder.Quantity)
		}
	}
}

func TestRunReconcilesDeliveredReorders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.reorders.Create(ctx, branchID, 100001, 5)
	f.reorders.Create(ctx, branchID, 100002, 10)
	f.reorders.Create(ctx, branchID, 100002, 15)
	f.reorders.UpdateStatus(ctx, branchID, 1, models.ReorderDelivered)
	f.reorders.UpdateStatus(ctx, branchID, 2, models.ReorderDelivered)

	report := f.svc.Run(ctx)

	article1, _ := f.catalog.GetByID(ctx, branchID, 100001)
	if article1.Stock != 10 {
		t.Errorf("expected stock 10 for article 100001, got %d", article1.Stock)
	}
	article2, _ := f.catalog.GetByID(ctx, branchID, 100002)
	if article2.Stock != 17 {
		t.Errorf("expected stock 17 for article 100002, got %d", article2.Stock)
	}

	delivered, _ := f.reorders.GetAllByStatus(ctx, models.ReorderDelivered)
	if len(delivered) != 0 {
		t.Errorf("expected no delivered reorders left, got %d", len(delivered))
	}
	completed, _ := f.reorders.GetAllByStatus(ctx, models.ReorderCompleted)
	if len(completed) != 2 {
		t.Errorf("expected 2 completed reorders, got %d", len(completed))
	}
	if report.Reconciled != 2 {
		t.Errorf("expected 2 reconciled, got %+v", report)
	}
}

func TestRunPlacesNewReorders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.reorders.Create(ctx, branchID, 100001, 5)
	f.reorders.Create(ctx, branchID, 100002, 10)

	report := f.svc.Run(ctx)

	newOnes, _ := f.reorders.GetAllByStatus(ctx, models.ReorderNew)
	if len(newOnes) != 0 {
		t.Errorf("expected no NEW reorders after a pass, got %d", len(newOnes))
	}
	waiting, _ := f.reorders.GetAllByStatus(ctx, models.ReorderWaiting)
	if len(waiting) != 2 {
		t.Errorf("expected 2 WAITING reorders, got %d", len(waiting))
	}

	if got := f.mustGetReorder(t, 1).Quantity; got != 5 {
		t.Errorf("placing must not change quantity, got %d", got)
	}
	if got := f.mustGetReorder(t, 2).Quantity; got != 10 {
		t.Errorf("placing must not change quantity, got %d", got)
	}
	if report.Placed != 2 {
		t.Errorf("expected 2 placed, got %+v", report)
	}
}

func TestRunCompletesDeliveryForDeletedArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.reorders.Create(ctx, branchID, 100001, 5)
	f.reorders.UpdateStatus(ctx, branchID, 1, models.ReorderDelivered)
	f.catalog.Delete(ctx, branchID, 100001)

	report := f.svc.Run(ctx)

	if got := f.mustGetReorder(t, 1).Status; got != models.ReorderCompleted {
		t.Errorf("delivery for a deleted article must still complete, got %s", got)
	}
	if report.Reconciled != 1 || report.Failures != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRunSurvivesBrokenEventSink(t *testing.T) {
	f := newFixture(t)
	f.publisher.fail = true
	ctx := context.Background()

	f.catalog.ChangeStock(ctx, branchID, 100001, -3)
	report := f.svc.Run(ctx)

	if report.Created != 1 || report.Placed != 1 {
		t.Errorf("publish failures must not abort the pass, got %+v", report)
	}
	if got := f.mustGetReorder(t, 1).Status; got != models.ReorderWaiting {
		t.Errorf("expected reorder placed despite broken sink, got %s", got)
	}
}

func TestRunPublishesEventPerStateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.ChangeStock(ctx, branchID, 100001, -3)
	f.svc.Run(ctx)

	// One event for the creation and one for the placement.
	if got := f.publisher.count(); got != 2 {
		t.Errorf("expected 2 events, got %d", got)
	}
}

func TestRunQuantitiesAlwaysPositive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addArticle(t, 100003, "Article 3", "1.00", 0, 3, 0)
	f.catalog.ChangeReserved(ctx, branchID, 100003, 10) // sellable -7 with minStock 0
	f.catalog.ChangeStock(ctx, branchID, 100001, -5)
	f.catalog.ChangeReserved(ctx, branchID, 100002, 7)

	for i := 0; i < 3; i++ {
		f.svc.Run(ctx)
	}

	for _, reorder := range f.branchReorders(t) {
		if reorder.Quantity < 1 {
			t.Errorf("reorder %d created with non-positive quantity %d", reorder.ReorderID, reorder.Quantity)
		}
	}
}

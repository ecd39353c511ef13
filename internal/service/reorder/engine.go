// Package reorder carries a supplier reorder through its lifecycle and keeps
// the branch inventories above their safety thresholds.
package reorder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
	"github.com/lmeier/warehouse/pkg/clients/eventlog"
)

// Service runs the periodic reorder pass and exposes the reorder ledger to
// the HTTP surface.
type Service struct {
	catalog   repository.Catalog
	reorders  repository.Reorders
	publisher eventlog.Publisher
	logger    *zap.Logger
}

// NewService wires the reorder service.
func NewService(catalog repository.Catalog, reorders repository.Reorders, publisher eventlog.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = eventlog.NopPublisher{}
	}
	return &Service{catalog: catalog, reorders: reorders, publisher: publisher, logger: logger}
}

// Report is the aggregate outcome of one pass. Item-level failures are
// counted, not propagated; the failed items are retried on the next pass.
type Report struct {
	Reconciled int `json:"reconciled"`
	Created    int `json:"created"`
	Placed     int `json:"placed"`
	Failures   int `json:"failures"`
}

// Run performs one pass: reconcile delivered reorders into stock, create
// reorders for articles below their threshold, then place every reorder that
// is still NEW. Each phase is idempotent and safe to re-run; overlapping
// passes are tolerated because every ledger mutation is atomic on its own.
func (s *Service) Run(ctx context.Context) Report {
	var report Report

	s.reconcileDeliveries(ctx, &report)
	s.orderLowStock(ctx, &report)
	s.placeNewOrders(ctx, &report)

	s.logger.Info("reorder pass finished",
		zap.Int("reconciled", report.Reconciled),
		zap.Int("created", report.Created),
		zap.Int("placed", report.Placed),
		zap.Int("failures", report.Failures))
	return report
}

// reconcileDeliveries books every delivered reorder into stock and completes
// it. A reorder whose article has been deleted is completed anyway so the
// delivery cannot stay stuck.
func (s *Service) reconcileDeliveries(ctx context.Context, report *Report) {
	delivered, err := s.reorders.GetAllByStatus(ctx, models.ReorderDelivered)
	if err != nil {
		s.logger.Error("failed to load delivered reorders", zap.Error(err))
		report.Failures++
		return
	}

	for _, entry := range delivered {
		reorder := entry.Reorder

		booked, err := s.catalog.ChangeStock(ctx, entry.BranchID, reorder.ArticleID, reorder.Quantity)
		if err != nil {
			s.logger.Error("failed to book delivery into stock",
				zap.Int64("branch_id", entry.BranchID),
				zap.Int64("reorder_id", reorder.ReorderID),
				zap.Error(err))
			report.Failures++
			continue
		}
		if !booked {
			s.logger.Warn("article gone, completing reorder without stock update",
				zap.Int64("branch_id", entry.BranchID),
				zap.Int64("article_id", reorder.ArticleID),
				zap.Int64("reorder_id", reorder.ReorderID))
		}

		updated, err := s.reorders.UpdateStatus(ctx, entry.BranchID, reorder.ReorderID, models.ReorderCompleted)
		if err != nil {
			s.logger.Error("failed to complete reorder",
				zap.Int64("branch_id", entry.BranchID),
				zap.Int64("reorder_id", reorder.ReorderID),
				zap.Error(err))
			report.Failures++
			continue
		}
		if !updated {
			continue
		}

		report.Reconciled++
		s.publish(ctx, models.NewEvent(models.CategoryReorder, models.SeverityInfo,
			entry.BranchID, reorder.ArticleID,
			fmt.Sprintf("reorder %d completed, %d pieces booked into stock", reorder.ReorderID, reorder.Quantity)))
	}
}

// orderLowStock creates a reorder for every article whose sellable quantity,
// netted against the quantity already on order, is below its threshold. The
// order size restores the netted sellable quantity to twice the threshold.
func (s *Service) orderLowStock(ctx context.Context, report *Report) {
	low, err := s.catalog.GetLowStock(ctx)
	if err != nil {
		s.logger.Error("failed to query low stock articles", zap.Error(err))
		report.Failures++
		return
	}

	for _, entry := range low {
		article := entry.Article

		outstanding, err := s.outstandingQuantity(ctx, entry.BranchID, article.ArticleID)
		if err != nil {
			s.logger.Error("failed to load outstanding reorders",
				zap.Int64("branch_id", entry.BranchID),
				zap.Int64("article_id", article.ArticleID),
				zap.Error(err))
			report.Failures++
			continue
		}

		effective := article.Sellable() + outstanding
		if effective >= article.MinStock {
			continue
		}

		quantity := 2*article.MinStock - effective
		if quantity <= 0 {
			continue
		}

		reorder, err := s.reorders.Create(ctx, entry.BranchID, article.ArticleID, quantity)
		if err != nil {
			s.logger.Error("failed to create reorder",
				zap.Int64("branch_id", entry.BranchID),
				zap.Int64("article_id", article.ArticleID),
				zap.Error(err))
			report.Failures++
			continue
		}

		report.Created++
		s.publish(ctx, models.NewEvent(models.CategoryReorder, models.SeverityWarning,
			entry.BranchID, article.ArticleID,
			fmt.Sprintf("low stock on article %d, reorder %d created for %d pieces",
				article.ArticleID, reorder.ReorderID, reorder.Quantity)))
	}
}

// outstandingQuantity sums the quantities of the article's reorders that have
// not completed yet.
func (s *Service) outstandingQuantity(ctx context.Context, branchID, articleID int64) (int, error) {
	reorders, err := s.reorders.GetAllByBranch(ctx, branchID, "")
	if err != nil {
		return 0, err
	}

	var outstanding int
	for _, reorder := range reorders {
		if reorder.ArticleID == articleID && reorder.Outstanding() {
			outstanding += reorder.Quantity
		}
	}
	return outstanding, nil
}

// placeNewOrders advances every reorder still in NEW to WAITING, so no pass
// ever leaves a reorder visibly unplaced.
func (s *Service) placeNewOrders(ctx context.Context, report *Report) {
	created, err := s.reorders.GetAllByStatus(ctx, models.ReorderNew)
	if err != nil {
		s.logger.Error("failed to load new reorders", zap.Error(err))
		report.Failures++
		return
	}

	for _, entry := range created {
		reorder := entry.Reorder

		updated, err := s.reorders.UpdateStatus(ctx, entry.BranchID, reorder.ReorderID, models.ReorderWaiting)
		if err != nil {
			s.logger.Error("failed to place reorder",
				zap.Int64("branch_id", entry.BranchID),
				zap.Int64("reorder_id", reorder.ReorderID),
				zap.Error(err))
			report.Failures++
			continue
		}
		if !updated {
			continue
		}

		report.Placed++
		s.publish(ctx, models.NewEvent(models.CategoryReorder, models.SeverityInfo,
			entry.BranchID, reorder.ArticleID,
			fmt.Sprintf("reorder %d placed with supplier, %d pieces of article %d",
				reorder.ReorderID, reorder.Quantity, reorder.ArticleID)))
	}
}

// publish hands the event to the sink. Failures are logged and swallowed; a
// broken sink must never fail a pass.
func (s *Service) publish(ctx context.Context, event models.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("category", event.Category),
			zap.Error(err))
	}
}

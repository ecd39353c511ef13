// Package inventory exposes the article catalog operations and reports every
// catalog mutation to the event sink.
package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
	"github.com/lmeier/warehouse/pkg/clients/eventlog"
)

// Service wraps the inventory ledger with validation and event publication.
type Service struct {
	catalog   repository.Catalog
	publisher eventlog.Publisher
	logger    *zap.Logger
}

// NewService wires the inventory service.
func NewService(catalog repository.Catalog, publisher eventlog.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = eventlog.NopPublisher{}
	}
	return &Service{catalog: catalog, publisher: publisher, logger: logger}
}

// Get returns one article of the branch.
func (s *Service) Get(ctx context.Context, branchID, articleID int64) (models.Article, error) {
	return s.catalog.GetByID(ctx, branchID, articleID)
}

// GetMany returns the found articles keyed by id; missing ids are omitted.
func (s *Service) GetMany(ctx context.Context, branchID int64, articleIDs []int64) (map[int64]models.Article, error) {
	return s.catalog.GetByIDs(ctx, branchID, articleIDs)
}

// List returns every article of the branch.
func (s *Service) List(ctx context.Context, branchID int64) ([]models.Article, error) {
	return s.catalog.GetAll(ctx, branchID)
}

// LowStock returns every article across all branches whose sellable quantity
// is below its threshold.
func (s *Service) LowStock(ctx context.Context) ([]repository.BranchArticle, error) {
	return s.catalog.GetLowStock(ctx)
}

// Create validates and inserts an article. Creating an id that already exists
// returns the stored article unchanged.
func (s *Service) Create(ctx context.Context, branchID, articleID int64, name string, price decimal.Decimal, minStock, stock, reserved int) (models.Article, error) {
	article, err := models.NewArticle(articleID, name, price, minStock, stock, reserved)
	if err != nil {
		return models.Article{}, err
	}

	created, err := s.catalog.Create(ctx, branchID, article)
	if err != nil {
		return models.Article{}, err
	}

	s.publish(ctx, branchID, articleID, fmt.Sprintf("article %d created", articleID))
	return created, nil
}

// Update replaces the descriptive fields of an article; stock and reserved
// quantities are untouched.
func (s *Service) Update(ctx context.Context, branchID, articleID int64, name string, price decimal.Decimal, minStock int) (models.Article, error) {
	updated, err := s.catalog.Update(ctx, branchID, articleID, name, price, minStock)
	if err != nil {
		return models.Article{}, err
	}

	s.publish(ctx, branchID, articleID, fmt.Sprintf("article %d updated", articleID))
	return updated, nil
}

// Delete removes an article; true iff it existed.
func (s *Service) Delete(ctx context.Context, branchID, articleID int64) (bool, error) {
	deleted, err := s.catalog.Delete(ctx, branchID, articleID)
	if err != nil || !deleted {
		return deleted, err
	}

	s.publish(ctx, branchID, articleID, fmt.Sprintf("article %d deleted", articleID))
	return true, nil
}

// AdjustStock applies a stock delta. false means the article is absent or the
// adjustment would drive stock negative; nothing was changed then.
func (s *Service) AdjustStock(ctx context.Context, branchID, articleID int64, delta int) (bool, error) {
	changed, err := s.catalog.ChangeStock(ctx, branchID, articleID, delta)
	if err != nil || !changed {
		return changed, err
	}

	s.publish(ctx, branchID, articleID, fmt.Sprintf("stock of article %d changed by %d", articleID, delta))
	return true, nil
}

// AdjustReserved applies a reservation delta under the same rejection rule as
// AdjustStock.
func (s *Service) AdjustReserved(ctx context.Context, branchID, articleID int64, delta int) (bool, error) {
	changed, err := s.catalog.ChangeReserved(ctx, branchID, articleID, delta)
	if err != nil || !changed {
		return changed, err
	}

	s.publish(ctx, branchID, articleID, fmt.Sprintf("reserved quantity of article %d changed by %d", articleID, delta))
	return true, nil
}

func (s *Service) publish(ctx context.Context, branchID, articleID int64, message string) {
	event := models.NewEvent(models.CategoryArticle, models.SeverityInfo, branchID, articleID, message)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

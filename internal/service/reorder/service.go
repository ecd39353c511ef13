package reorder

import (
	"context"
	"fmt"

	"github.com/lmeier/warehouse/internal/domain/models"
)

// Create inserts a reorder directly, outside the low-stock detection. It
// starts in NEW and is placed by the next pass.
func (s *Service) Create(ctx context.Context, branchID, articleID int64, quantity int) (models.Reorder, error) {
	reorder, err := s.reorders.Create(ctx, branchID, articleID, quantity)
	if err != nil {
		return models.Reorder{}, err
	}

	s.publish(ctx, models.NewEvent(models.CategoryReorder, models.SeverityInfo,
		branchID, articleID,
		fmt.Sprintf("reorder %d created for %d pieces of article %d", reorder.ReorderID, quantity, articleID)))
	return reorder, nil
}

// Get returns one reorder of the branch.
func (s *Service) Get(ctx context.Context, branchID, reorderID int64) (models.Reorder, error) {
	return s.reorders.GetByID(ctx, branchID, reorderID)
}

// List returns the branch's reorders, restricted to a status when one is given.
func (s *Service) List(ctx context.Context, branchID int64, status models.ReorderStatus) ([]models.Reorder, error) {
	return s.reorders.GetAllByBranch(ctx, branchID, status)
}

// UpdateStatus sets a reorder's status. This is the entry point for the
// delivery confirmation actor, which marks arrived reorders DELIVERED; the
// pass picks them up from there.
func (s *Service) UpdateStatus(ctx context.Context, branchID, reorderID int64, status models.ReorderStatus) (bool, error) {
	updated, err := s.reorders.UpdateStatus(ctx, branchID, reorderID, status)
	if err != nil || !updated {
		return updated, err
	}

	s.publish(ctx, models.NewEvent(models.CategoryReorder, models.SeverityInfo,
		branchID, 0,
		fmt.Sprintf("reorder %d set to %s", reorderID, status)))
	return true, nil
}

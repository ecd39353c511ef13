// Package repository defines the storage contracts for the two warehouse
// ledgers. Implementations live in the memory and mongodb subpackages and are
// interchangeable; every single mutation must be atomic on its own so that
// concurrent writers can never drive stock or reserved quantities negative.
package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/lmeier/warehouse/internal/domain/models"
)

// ErrNotFound signals that the addressed branch, article or reorder does not exist.
var ErrNotFound = errors.New("not found")

// BranchArticle pairs an article with the branch it belongs to, for queries
// that span branches.
type BranchArticle struct {
	BranchID int64          `json:"branchId"`
	Article  models.Article `json:"article"`
}

// BranchReorder pairs a reorder with its branch.
type BranchReorder struct {
	BranchID int64          `json:"branchId"`
	Reorder  models.Reorder `json:"reorder"`
}

// Catalog is the inventory ledger: all article records, scoped by branch.
type Catalog interface {
	// GetByID returns the article or ErrNotFound.
	GetByID(ctx context.Context, branchID, articleID int64) (models.Article, error)

	// GetByIDs returns the found articles keyed by id; missing ids are
	// omitted, never an error.
	GetByIDs(ctx context.Context, branchID int64, articleIDs []int64) (map[int64]models.Article, error)

	// GetAll returns every article of the branch in no particular order.
	GetAll(ctx context.Context, branchID int64) ([]models.Article, error)

	// Create inserts the article. Idempotent by articleId: when the id
	// already exists the stored article is returned unchanged.
	Create(ctx context.Context, branchID int64, article models.Article) (models.Article, error)

	// Update replaces the descriptive fields and keeps the current stock and
	// reserved quantities. Returns ErrNotFound for an unknown article.
	Update(ctx context.Context, branchID, articleID int64, name string, price decimal.Decimal, minStock int) (models.Article, error)

	// Delete removes the article; true iff it existed.
	Delete(ctx context.Context, branchID, articleID int64) (bool, error)

	// ChangeStock atomically applies stock += delta. Rejected without
	// mutation (false) when the article is absent or the result would be
	// negative.
	ChangeStock(ctx context.Context, branchID, articleID int64, delta int) (bool, error)

	// ChangeReserved atomically applies reserved += delta under the same
	// rejection rule as ChangeStock.
	ChangeReserved(ctx context.Context, branchID, articleID int64, delta int) (bool, error)

	// GetLowStock returns every article across all branches whose sellable
	// quantity is below its minimum stock threshold, ordered by branch then
	// article id so passes process articles deterministically.
	GetLowStock(ctx context.Context) ([]BranchArticle, error)
}

// Reorders is the reorder ledger.
type Reorders interface {
	// Create inserts a reorder in status NEW with a freshly assigned id that
	// is unique within the ledger.
	Create(ctx context.Context, branchID, articleID int64, quantity int) (models.Reorder, error)

	// GetByID returns the reorder or ErrNotFound.
	GetByID(ctx context.Context, branchID, reorderID int64) (models.Reorder, error)

	// GetAllByBranch returns the branch's reorders, restricted to the given
	// status when one is passed; the empty status returns all.
	GetAllByBranch(ctx context.Context, branchID int64, status models.ReorderStatus) ([]models.Reorder, error)

	// GetAllByStatus returns every reorder in the given status across all branches.
	GetAllByStatus(ctx context.Context, status models.ReorderStatus) ([]BranchReorder, error)

	// UpdateStatus sets the reorder's status; false when the reorder does not
	// exist. Transition legality is the caller's responsibility.
	UpdateStatus(ctx context.Context, branchID, reorderID int64, status models.ReorderStatus) (bool, error)
}

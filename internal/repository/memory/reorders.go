package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
)

// Reorders is the in-memory reorder ledger. Ids are assigned from a single
// monotonically increasing counter shared by all branches.
type Reorders struct {
	mu       sync.Mutex
	branches map[int64]map[int64]models.Reorder
	nextID   int64
}

// NewReorders creates an empty in-memory reorder ledger.
func NewReorders() *Reorders {
	return &Reorders{branches: make(map[int64]map[int64]models.Reorder)}
}

// Create implements repository.Reorders.
func (r *Reorders) Create(_ context.Context, branchID, articleID int64, quantity int) (models.Reorder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reorder, err := models.NewReorder(r.nextID+1, articleID, quantity, models.ReorderNew)
	if err != nil {
		return models.Reorder{}, err
	}
	r.nextID++

	branch, ok := r.branches[branchID]
	if !ok {
		branch = make(map[int64]models.Reorder)
		r.branches[branchID] = branch
	}
	branch[reorder.ReorderID] = reorder
	return reorder, nil
}

// GetByID implements repository.Reorders.
func (r *Reorders) GetByID(_ context.Context, branchID, reorderID int64) (models.Reorder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reorder, ok := r.branches[branchID][reorderID]
	if !ok {
		return models.Reorder{}, repository.ErrNotFound
	}
	return reorder, nil
}

// GetAllByBranch implements repository.Reorders. The empty status returns all.
func (r *Reorders) GetAllByBranch(_ context.Context, branchID int64, status models.ReorderStatus) ([]models.Reorder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reorders := make([]models.Reorder, 0, len(r.branches[branchID]))
	for _, reorder := range r.branches[branchID] {
		if status == "" || reorder.Status == status {
			reorders = append(reorders, reorder)
		}
	}
	sort.Slice(reorders, func(i, j int) bool { return reorders[i].ReorderID < reorders[j].ReorderID })
	return reorders, nil
}

// GetAllByStatus implements repository.Reorders.
func (r *Reorders) GetAllByStatus(_ context.Context, status models.ReorderStatus) ([]repository.BranchReorder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []repository.BranchReorder
	for branchID, branch := range r.branches {
		for _, reorder := range branch {
			if reorder.Status == status {
				matches = append(matches, repository.BranchReorder{BranchID: branchID, Reorder: reorder})
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Reorder.ReorderID < matches[j].Reorder.ReorderID })
	return matches, nil
}

// UpdateStatus implements repository.Reorders.
func (r *Reorders) UpdateStatus(_ context.Context, branchID, reorderID int64, status models.ReorderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reorder, ok := r.branches[branchID][reorderID]
	if !ok {
		return false, nil
	}
	reorder.Status = status
	r.branches[branchID][reorderID] = reorder
	return true, nil
}

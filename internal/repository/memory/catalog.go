// Package memory provides mutex-guarded in-process implementations of both
// ledger contracts. They serve as the reference implementation for tests and
// as a storage driver for running without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
)

// Catalog is the in-memory inventory ledger, keyed by branch then article id.
type Catalog struct {
	mu       sync.Mutex
	branches map[int64]map[int64]models.Article
}

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{branches: make(map[int64]map[int64]models.Article)}
}

// GetByID implements repository.Catalog.
func (c *Catalog) GetByID(_ context.Context, branchID, articleID int64) (models.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	article, ok := c.branches[branchID][articleID]
	if !ok {
		return models.Article{}, repository.ErrNotFound
	}
	return article, nil
}

// GetByIDs implements repository.Catalog. Missing ids are omitted.
func (c *Catalog) GetByIDs(_ context.Context, branchID int64, articleIDs []int64) (map[int64]models.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := make(map[int64]models.Article, len(articleIDs))
	for _, id := range articleIDs {
		if article, ok := c.branches[branchID][id]; ok {
			found[id] = article
		}
	}
	return found, nil
}

// GetAll implements repository.Catalog.
func (c *Catalog) GetAll(_ context.Context, branchID int64) ([]models.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	articles := make([]models.Article, 0, len(c.branches[branchID]))
	for _, article := range c.branches[branchID] {
		articles = append(articles, article)
	}
	return articles, nil
}

// Create implements repository.Catalog. Idempotent by article id.
func (c *Catalog) Create(_ context.Context, branchID int64, article models.Article) (models.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	branch, ok := c.branches[branchID]
	if !ok {
		branch = make(map[int64]models.Article)
		c.branches[branchID] = branch
	}
	if existing, ok := branch[article.ArticleID]; ok {
		return existing, nil
	}
	branch[article.ArticleID] = article
	return article, nil
}

// Update implements repository.Catalog; stock and reserved are preserved.
func (c *Catalog) Update(_ context.Context, branchID, articleID int64, name string, price decimal.Decimal, minStock int) (models.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.branches[branchID][articleID]
	if !ok {
		return models.Article{}, repository.ErrNotFound
	}

	updated, err := models.NewArticle(articleID, name, price, minStock, existing.Stock, existing.Reserved)
	if err != nil {
		return models.Article{}, err
	}
	c.branches[branchID][articleID] = updated
	return updated, nil
}

// Delete implements repository.Catalog.
func (c *Catalog) Delete(_ context.Context, branchID, articleID int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.branches[branchID][articleID]; !ok {
		return false, nil
	}
	delete(c.branches[branchID], articleID)
	return true, nil
}

// ChangeStock implements repository.Catalog. The mutation happens under the
// ledger lock, so readers never observe a half-applied adjustment.
func (c *Catalog) ChangeStock(_ context.Context, branchID, articleID int64, delta int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	article, ok := c.branches[branchID][articleID]
	if !ok || article.Stock+delta < 0 {
		return false, nil
	}
	article.Stock += delta
	c.branches[branchID][articleID] = article
	return true, nil
}

// ChangeReserved implements repository.Catalog.
func (c *Catalog) ChangeReserved(_ context.Context, branchID, articleID int64, delta int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	article, ok := c.branches[branchID][articleID]
	if !ok || article.Reserved+delta < 0 {
		return false, nil
	}
	article.Reserved += delta
	c.branches[branchID][articleID] = article
	return true, nil
}

// GetLowStock implements repository.Catalog.
func (c *Catalog) GetLowStock(_ context.Context) ([]repository.BranchArticle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var low []repository.BranchArticle
	for branchID, branch := range c.branches {
		for _, article := range branch {
			if article.LowStock() {
				low = append(low, repository.BranchArticle{BranchID: branchID, Article: article})
			}
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].BranchID != low[j].BranchID {
			return low[i].BranchID < low[j].BranchID
		}
		return low[i].Article.ArticleID < low[j].Article.ArticleID
	})
	return low, nil
}

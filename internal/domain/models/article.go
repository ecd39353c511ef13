package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrValidation marks entity construction failures; callers match it with errors.Is.
var ErrValidation = errors.New("validation failed")

// minPrice is the smallest price the catalog accepts, after rounding.
var minPrice = decimal.New(5, -2)

// Article is the inventory record for one article at one branch. Stock and
// reserved quantities are only ever changed through the catalog's adjustment
// operations, never by assigning to the fields directly.
type Article struct {
	ArticleID int64           `json:"articleId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	MinStock  int             `json:"minStock"`
	Stock     int             `json:"stock"`
	Reserved  int             `json:"reserved"`
}

// NewArticle validates every field invariant and returns the article with its
// price rounded half-up to two decimals. Prices below 0.05 are rejected.
func NewArticle(articleID int64, name string, price decimal.Decimal, minStock, stock, reserved int) (Article, error) {
	if articleID < 1 {
		return Article{}, fmt.Errorf("%w: articleId must be 1 or higher", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return Article{}, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	rounded := price.Round(2)
	if rounded.LessThan(minPrice) {
		return Article{}, fmt.Errorf("%w: price must be 0.05 or higher", ErrValidation)
	}
	if minStock < 0 {
		return Article{}, fmt.Errorf("%w: minStock must not be negative", ErrValidation)
	}
	if stock < 0 {
		return Article{}, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	if reserved < 0 {
		return Article{}, fmt.Errorf("%w: reserved must not be negative", ErrValidation)
	}

	return Article{
		ArticleID: articleID,
		Name:      name,
		Price:     rounded,
		MinStock:  minStock,
		Stock:     stock,
		Reserved:  reserved,
	}, nil
}

// Sellable is the quantity available to promise to new orders. It goes
// negative when more is reserved than is on hand.
func (a Article) Sellable() int {
	return a.Stock - a.Reserved
}

// LowStock reports whether the sellable quantity has fallen below the
// configured safety threshold.
func (a Article) LowStock() bool {
	return a.Sellable() < a.MinStock
}

// Equal compares articles by identity only: two articles with the same
// ArticleID are the same article no matter what the other fields hold.
// Field-by-field comparison in tests must spell the fields out.
func (a Article) Equal(other Article) bool {
	return a.ArticleID == other.ArticleID
}

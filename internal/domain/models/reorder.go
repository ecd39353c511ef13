package models

import "fmt"

// ReorderStatus enumerates the lifecycle states of a supplier reorder.
type ReorderStatus string

const (
	// ReorderNew marks a reorder that has not yet been placed with a supplier.
	ReorderNew ReorderStatus = "NEW"
	// ReorderWaiting marks a reorder placed with a supplier and awaiting delivery.
	ReorderWaiting ReorderStatus = "WAITING"
	// ReorderDelivered marks a reorder whose goods arrived but are not yet in stock.
	ReorderDelivered ReorderStatus = "DELIVERED"
	// ReorderCompleted marks a reorder whose quantity has been applied to stock. Terminal.
	ReorderCompleted ReorderStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ReorderStatus) Valid() bool {
	switch s {
	case ReorderNew, ReorderWaiting, ReorderDelivered, ReorderCompleted:
		return true
	}
	return false
}

// ParseReorderStatus converts the wire representation into a ReorderStatus.
func ParseReorderStatus(value string) (ReorderStatus, error) {
	status := ReorderStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown reorder status %q", ErrValidation, value)
	}
	return status, nil
}

// Reorder is one purchase request for one article. The quantity is fixed at
// creation; partial deliveries are not modeled.
type Reorder struct {
	ReorderID int64         `json:"reorderId"`
	ArticleID int64         `json:"articleId"`
	Quantity  int           `json:"quantity"`
	Status    ReorderStatus `json:"status"`
}

// NewReorder validates the reorder invariants.
func NewReorder(reorderID, articleID int64, quantity int, status ReorderStatus) (Reorder, error) {
	if reorderID < 1 {
		return Reorder{}, fmt.Errorf("%w: reorderId must be 1 or higher", ErrValidation)
	}
	if articleID < 1 {
		return Reorder{}, fmt.Errorf("%w: articleId must be 1 or higher", ErrValidation)
	}
	if quantity < 1 {
		return Reorder{}, fmt.Errorf("%w: quantity must be 1 or higher", ErrValidation)
	}
	if !status.Valid() {
		return Reorder{}, fmt.Errorf("%w: unknown reorder status %q", ErrValidation, status)
	}

	return Reorder{
		ReorderID: reorderID,
		ArticleID: articleID,
		Quantity:  quantity,
		Status:    status,
	}, nil
}

// Outstanding reports whether the reorder still represents demand on its way
// in, i.e. it has not reached the terminal state yet.
func (r Reorder) Outstanding() bool {
	return r.Status != ReorderCompleted
}

// Equal compares reorders by article identity only, mirroring Article.Equal.
func (r Reorder) Equal(other Reorder) bool {
	return r.ArticleID == other.ArticleID
}

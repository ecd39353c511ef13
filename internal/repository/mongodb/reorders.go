package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
)

// Reorders is the MongoDB-backed reorder ledger. Ids come from a counters
// document incremented atomically, so they are unique and monotonically
// increasing across all branches.
type Reorders struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

type reorderDoc struct {
	BranchID  int64  `bson:"branchId"`
	ReorderID int64  `bson:"reorderId"`
	ArticleID int64  `bson:"articleId"`
	Quantity  int    `bson:"quantity"`
	Status    string `bson:"status"`
}

func (d reorderDoc) toReorder() models.Reorder {
	return models.Reorder{
		ReorderID: d.ReorderID,
		ArticleID: d.ArticleID,
		Quantity:  d.Quantity,
		Status:    models.ReorderStatus(d.Status),
	}
}

func (r *Reorders) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": reordersCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate reorder id: %w", err)
	}
	return counter.Seq, nil
}

// Create implements repository.Reorders.
func (r *Reorders) Create(ctx context.Context, branchID, articleID int64, quantity int) (models.Reorder, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return models.Reorder{}, err
	}

	reorder, err := models.NewReorder(id, articleID, quantity, models.ReorderNew)
	if err != nil {
		return models.Reorder{}, err
	}

	_, err = r.coll.InsertOne(ctx, reorderDoc{
		BranchID:  branchID,
		ReorderID: reorder.ReorderID,
		ArticleID: reorder.ArticleID,
		Quantity:  reorder.Quantity,
		Status:    string(reorder.Status),
	})
	if err != nil {
		return models.Reorder{}, fmt.Errorf("failed to insert reorder: %w", err)
	}
	return reorder, nil
}

// GetByID implements repository.Reorders.
func (r *Reorders) GetByID(ctx context.Context, branchID, reorderID int64) (models.Reorder, error) {
	var doc reorderDoc
	err := r.coll.FindOne(ctx, bson.M{"branchId": branchID, "reorderId": reorderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reorder{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Reorder{}, fmt.Errorf("failed to load reorder: %w", err)
	}
	return doc.toReorder(), nil
}

// GetAllByBranch implements repository.Reorders.
func (r *Reorders) GetAllByBranch(ctx context.Context, branchID int64, status models.ReorderStatus) ([]models.Reorder, error) {
	filter := bson.M{"branchId": branchID}
	if status != "" {
		filter["status"] = string(status)
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "reorderId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load reorders: %w", err)
	}
	defer cursor.Close(ctx)

	var reorders []models.Reorder
	for cursor.Next(ctx) {
		var doc reorderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode reorder: %w", err)
		}
		reorders = append(reorders, doc.toReorder())
	}
	return reorders, cursor.Err()
}

// GetAllByStatus implements repository.Reorders.
func (r *Reorders) GetAllByStatus(ctx context.Context, status models.ReorderStatus) ([]repository.BranchReorder, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"status": string(status)},
		options.Find().SetSort(bson.D{{Key: "reorderId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load reorders: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []repository.BranchReorder
	for cursor.Next(ctx) {
		var doc reorderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode reorder: %w", err)
		}
		matches = append(matches, repository.BranchReorder{BranchID: doc.BranchID, Reorder: doc.toReorder()})
	}
	return matches, cursor.Err()
}

// UpdateStatus implements repository.Reorders.
func (r *Reorders) UpdateStatus(ctx context.Context, branchID, reorderID int64, status models.ReorderStatus) (bool, error) {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"branchId": branchID, "reorderId": reorderID},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update reorder status: %w", err)
	}
	return result.MatchedCount > 0, nil
}

package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
)

// Catalog is the MongoDB-backed inventory ledger.
type Catalog struct {
	coll *mongo.Collection
}

// articleDoc is the persisted shape of an article. The price travels as its
// canonical decimal string so no precision is lost in the store.
type articleDoc struct {
	BranchID  int64  `bson:"branchId"`
	ArticleID int64  `bson:"articleId"`
	Name      string `bson:"name"`
	Price     string `bson:"price"`
	MinStock  int    `bson:"minStock"`
	Stock     int    `bson:"stock"`
	Reserved  int    `bson:"reserved"`
}

func toArticleDoc(branchID int64, article models.Article) articleDoc {
	return articleDoc{
		BranchID:  branchID,
		ArticleID: article.ArticleID,
		Name:      article.Name,
		Price:     article.Price.String(),
		MinStock:  article.MinStock,
		Stock:     article.Stock,
		Reserved:  article.Reserved,
	}
}

func (d articleDoc) toArticle() (models.Article, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return models.Article{}, fmt.Errorf("invalid stored price %q: %w", d.Price, err)
	}
	return models.Article{
		ArticleID: d.ArticleID,
		Name:      d.Name,
		Price:     price,
		MinStock:  d.MinStock,
		Stock:     d.Stock,
		Reserved:  d.Reserved,
	}, nil
}

func articleFilter(branchID, articleID int64) bson.M {
	return bson.M{"branchId": branchID, "articleId": articleID}
}

// GetByID implements repository.Catalog.
func (c *Catalog) GetByID(ctx context.Context, branchID, articleID int64) (models.Article, error) {
	var doc articleDoc
	err := c.coll.FindOne(ctx, articleFilter(branchID, articleID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Article{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to load article: %w", err)
	}
	return doc.toArticle()
}

// GetByIDs implements repository.Catalog.
func (c *Catalog) GetByIDs(ctx context.Context, branchID int64, articleIDs []int64) (map[int64]models.Article, error) {
	cursor, err := c.coll.Find(ctx, bson.M{
		"branchId":  branchID,
		"articleId": bson.M{"$in": articleIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	defer cursor.Close(ctx)

	found := make(map[int64]models.Article, len(articleIDs))
	for cursor.Next(ctx) {
		var doc articleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode article: %w", err)
		}
		article, err := doc.toArticle()
		if err != nil {
			return nil, err
		}
		found[article.ArticleID] = article
	}
	return found, cursor.Err()
}

// GetAll implements repository.Catalog.
func (c *Catalog) GetAll(ctx context.Context, branchID int64) ([]models.Article, error) {
	cursor, err := c.coll.Find(ctx, bson.M{"branchId": branchID})
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	for cursor.Next(ctx) {
		var doc articleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode article: %w", err)
		}
		article, err := doc.toArticle()
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, cursor.Err()
}

// Create implements repository.Catalog. The unique index on
// (branchId, articleId) makes the insert race-free; on a duplicate the stored
// article is returned unchanged.
func (c *Catalog) Create(ctx context.Context, branchID int64, article models.Article) (models.Article, error) {
	_, err := c.coll.InsertOne(ctx, toArticleDoc(branchID, article))
	if mongo.IsDuplicateKeyError(err) {
		return c.GetByID(ctx, branchID, article.ArticleID)
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to insert article: %w", err)
	}
	return article, nil
}

// Update implements repository.Catalog.
func (c *Catalog) Update(ctx context.Context, branchID, articleID int64, name string, price decimal.Decimal, minStock int) (models.Article, error) {
	validated, err := models.NewArticle(articleID, name, price, minStock, 0, 0)
	if err != nil {
		return models.Article{}, err
	}

	result, err := c.coll.UpdateOne(ctx, articleFilter(branchID, articleID), bson.M{"$set": bson.M{
		"name":     validated.Name,
		"price":    validated.Price.String(),
		"minStock": validated.MinStock,
	}})
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to update article: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.Article{}, repository.ErrNotFound
	}
	return c.GetByID(ctx, branchID, articleID)
}

// Delete implements repository.Catalog.
func (c *Catalog) Delete(ctx context.Context, branchID, articleID int64) (bool, error) {
	result, err := c.coll.DeleteOne(ctx, articleFilter(branchID, articleID))
	if err != nil {
		return false, fmt.Errorf("failed to delete article: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// ChangeStock implements repository.Catalog. The guard filter only matches
// when the incremented stock stays non-negative, so the check and the $inc
// are one atomic server-side operation.
func (c *Catalog) ChangeStock(ctx context.Context, branchID, articleID int64, delta int) (bool, error) {
	return c.changeCounter(ctx, branchID, articleID, "stock", delta)
}

// ChangeReserved implements repository.Catalog.
func (c *Catalog) ChangeReserved(ctx context.Context, branchID, articleID int64, delta int) (bool, error) {
	return c.changeCounter(ctx, branchID, articleID, "reserved", delta)
}

func (c *Catalog) changeCounter(ctx context.Context, branchID, articleID int64, field string, delta int) (bool, error) {
	filter := articleFilter(branchID, articleID)
	filter[field] = bson.M{"$gte": -delta}

	result, err := c.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return false, fmt.Errorf("failed to change %s: %w", field, err)
	}
	return result.MatchedCount > 0, nil
}

// GetLowStock implements repository.Catalog with a server-side comparison of
// stock - reserved against minStock.
func (c *Catalog) GetLowStock(ctx context.Context) ([]repository.BranchArticle, error) {
	filter := bson.M{"$expr": bson.M{"$lt": bson.A{
		bson.M{"$subtract": bson.A{"$stock", "$reserved"}},
		"$minStock",
	}}}

	cursor, err := c.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "branchId", Value: 1}, {Key: "articleId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer cursor.Close(ctx)

	var low []repository.BranchArticle
	for cursor.Next(ctx) {
		var doc articleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode article: %w", err)
		}
		article, err := doc.toArticle()
		if err != nil {
			return nil, err
		}
		low = append(low, repository.BranchArticle{BranchID: doc.BranchID, Article: article})
	}
	return low, cursor.Err()
}

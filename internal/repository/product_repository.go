package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"suits-world/internal/models"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	queryTimeout = 10 * time.Second
)

type ProductRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
		now:        time.Now,
	}
}

// Create normalises, validates and inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := r.now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	product.Normalize()
	if err := product.Validate(); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return duplicateKeyError(err)
	}
	return nil
}

// FindByID returns a product of any status.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List returns one page of products matching q.
func (r *ProductRepository) List(ctx context.Context, q ProductQuery) (Page[models.Product], error) {
	q = q.normalized()
	opts := options.Find().
		SetSort(q.Sort()).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	return r.page(ctx, q.Filter(), opts, q.Page, q.Limit)
}

// Search matches the text index among active products, best match first.
func (r *ProductRepository) Search(ctx context.Context, text string, page, limit int) (Page[models.Product], error) {
	q := ProductQuery{Search: text, Page: page, Limit: limit}.normalized()
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	return r.page(ctx, q.Filter(), opts, q.Page, q.Limit)
}

func (r *ProductRepository) page(ctx context.Context, filter bson.M, opts *options.FindOptions, page, limit int) (Page[models.Product], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return Page[models.Product]{}, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0, limit)
	if err := cursor.All(ctx, &products); err != nil {
		return Page[models.Product]{}, fmt.Errorf("decode products: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return Page[models.Product]{}, fmt.Errorf("count products: %w", err)
	}

	return NewPage(products, page, limit, total), nil
}

// Update merges in onto the stored product and writes the whole document back,
// so normalisation and validation see the final state.
func (r *ProductRepository) Update(ctx context.Context, id string, in *models.ProductInput, actor primitive.ObjectID) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(product)
	product.UpdatedAt = r.now().UTC()
	if !actor.IsZero() {
		product.UpdatedBy = &actor
	}
	product.Normalize()
	if err := product.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return nil, duplicateKeyError(err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return product, nil
}

// Archive is the soft delete: the document stays, its status becomes archived.
func (r *ProductRepository) Archive(ctx context.Context, id string, actor primitive.ObjectID) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	set := bson.M{
		"status":    models.StatusArchived,
		"updatedAt": r.now().UTC(),
	}
	if !actor.IsZero() {
		set["updatedBy"] = actor
	}

	var product models.Product
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// UpdateInventory applies an inventory operation and persists the new quantity.
func (r *ProductRepository) UpdateInventory(ctx context.Context, id string, quantity int, op models.InventoryOperation) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.ApplyInventory(quantity, op)
	product.UpdatedAt = r.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": product.ID},
		bson.M{"$set": bson.M{
			"inventory.quantity": product.Inventory.Quantity,
			"updatedAt":          product.UpdatedAt,
		}},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return product, nil
}

// All returns every product regardless of status, newest first.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

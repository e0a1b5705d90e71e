package mongo

import (
	"context"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTransactionRepository struct {
	collection *mongo.Collection
}

// NewMongoTransactionRepository creates the ledger repository. It only ever
// inserts and reads.
func NewMongoTransactionRepository(db *mongo.Database) repository.TransactionRepository {
	return &mongoTransactionRepository{
		collection: db.Collection(transactionsCollection),
	}
}

func (r *mongoTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) (primitive.ObjectID, error) {
	if txn.Gym == primitive.NilObjectID || txn.Member == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("transaction gym and member are required")
	}
	if txn.Amount < 0 {
		return primitive.NilObjectID, errors.New("transaction amount cannot be negative")
	}

	txn.ID = primitive.NewObjectID()
	txn.CreatedAt = time.Now().UTC()
	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = txn.CreatedAt
	}

	if _, err := r.collection.InsertOne(ctx, txn); err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "unable to insert transaction")
	}
	return txn.ID, nil
}

// List returns one page of ledger entries, newest first, with the total count.
func (r *mongoTransactionRepository) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]domain.Transaction, int64, error) {
	query := bson.M{"gym": filter.GymID}
	if dateRange := dateRangeQuery(filter.From, filter.To); len(dateRange) > 0 {
		query["transactionDate"] = dateRange
	}
	if filter.Type != "" {
		query["transactionType"] = filter.Type
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to count transactions")
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "transactionDate", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	txns, err := r.find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListBetween returns entries with from <= transactionDate < to.
func (r *mongoTransactionRepository) ListBetween(ctx context.Context, gymID primitive.ObjectID, from, to time.Time) ([]domain.Transaction, error) {
	query := bson.M{"gym": gymID, "transactionDate": dateRangeQuery(from, to)}
	return r.find(ctx, query, nil)
}

// ListRecent returns the latest entries by creation time.
func (r *mongoTransactionRepository) ListRecent(ctx context.Context, gymID primitive.ObjectID, limit int64) ([]domain.Transaction, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	return r.find(ctx, bson.M{"gym": gymID}, findOptions)
}

func (r *mongoTransactionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Transaction, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query transactions")
	}
	defer cursor.Close(ctx)

	var txns []domain.Transaction
	if err = cursor.All(ctx, &txns); err != nil {
		return nil, errors.Wrap(err, "unable to decode transactions")
	}
	return txns, nil
}

func dateRangeQuery(from, to time.Time) bson.M {
	q := bson.M{}
	if !from.IsZero() {
		q["$gte"] = from
	}
	if !to.IsZero() {
		q["$lt"] = to
	}
	return q
}

// EnsureTransactionIndexes creates necessary indexes for the transactions collection.
func EnsureTransactionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "transactionDate", Value: -1}}},
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "member", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

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

type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollection),
	}
}

// Create inserts a subscription record. A reused paymentId hits the unique
// sparse index and is reported as repository.ErrDuplicateKey.
func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	sub.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, errors.Wrap(err, "unable to insert subscription")
	}
	return sub.ID, nil
}

func (r *mongoSubscriptionRepository) GetLatestByGym(ctx context.Context, gymID primitive.ObjectID) (*domain.Subscription, error) {
	var sub domain.Subscription
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"gym": gymID}, findOptions).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "unable to find subscription")
	}
	return &sub, nil
}

func (r *mongoSubscriptionRepository) ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"paymentId": paymentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "unable to check payment id")
	}
	return n > 0, nil
}

func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "paymentId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

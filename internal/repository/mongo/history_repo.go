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

type mongoMembershipHistoryRepository struct {
	collection *mongo.Collection
}

func NewMongoMembershipHistoryRepository(db *mongo.Database) repository.MembershipHistoryRepository {
	return &mongoMembershipHistoryRepository{
		collection: db.Collection(historyCollection),
	}
}

func (r *mongoMembershipHistoryRepository) Create(ctx context.Context, entry *domain.MembershipHistory) (primitive.ObjectID, error) {
	if entry.Member == primitive.NilObjectID || entry.Plan == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("history member and plan are required")
	}

	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "unable to insert membership history")
	}
	return entry.ID, nil
}

// ListByMember returns every period the member held, most recent first.
func (r *mongoMembershipHistoryRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.MembershipHistory, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"member": memberID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list membership history")
	}
	defer cursor.Close(ctx)

	var entries []domain.MembershipHistory
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "unable to decode membership history")
	}
	return entries, nil
}

func EnsureMembershipHistoryIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "member", Value: 1}, {Key: "startDate", Value: -1}}},
		{Keys: bson.D{{Key: "gym", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

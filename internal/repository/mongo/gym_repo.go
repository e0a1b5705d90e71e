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

type mongoGymRepository struct {
	collection *mongo.Collection
}

// NewMongoGymRepository creates a new Gym repository backed by MongoDB.
func NewMongoGymRepository(db *mongo.Database) repository.GymRepository {
	return &mongoGymRepository{
		collection: db.Collection(gymsCollection),
	}
}

func (r *mongoGymRepository) Create(ctx context.Context, gym *domain.Gym) (primitive.ObjectID, error) {
	if gym.Name == "" || gym.Owner == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("gym name and owner are required")
	}

	gym.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	gym.CreatedAt = now
	gym.UpdatedAt = now
	if gym.Managers == nil {
		gym.Managers = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, gym); err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "unable to insert gym")
	}
	return gym.ID, nil
}

// GetByID returns the gym regardless of its active flag; callers decide how
// to treat soft-deleted gyms.
func (r *mongoGymRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error) {
	var gym domain.Gym
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&gym)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "unable to find gym")
	}
	return &gym, nil
}

// ListByIDs returns the active gyms among ids, ordered by name.
func (r *mongoGymRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Gym, error) {
	if len(ids) == 0 {
		return []domain.Gym{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "isActive": true}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "unable to list gyms")
	}
	defer cursor.Close(ctx)

	var gyms []domain.Gym
	if err = cursor.All(ctx, &gyms); err != nil {
		return nil, errors.Wrap(err, "unable to decode gyms")
	}
	return gyms, nil
}

func (r *mongoGymRepository) CountActiveByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"owner": ownerID, "isActive": true})
	if err != nil {
		return 0, errors.Wrap(err, "unable to count gyms")
	}
	return n, nil
}

// AddManager adds managerID to the managers set of every gym in gymIDs.
func (r *mongoGymRepository) AddManager(ctx context.Context, gymIDs []primitive.ObjectID, managerID primitive.ObjectID) error {
	if len(gymIDs) == 0 {
		return nil
	}
	update := bson.M{
		"$addToSet": bson.M{"managers": managerID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": gymIDs}}, update)
	return errors.Wrap(err, "unable to add manager to gyms")
}

// RemoveManager pulls managerID from every gym except those in exceptGymIDs.
func (r *mongoGymRepository) RemoveManager(ctx context.Context, managerID primitive.ObjectID, exceptGymIDs []primitive.ObjectID) error {
	filter := bson.M{"managers": managerID}
	if len(exceptGymIDs) > 0 {
		filter["_id"] = bson.M{"$nin": exceptGymIDs}
	}
	update := bson.M{
		"$pull": bson.M{"managers": managerID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return errors.Wrap(err, "unable to remove manager from gyms")
}

func (r *mongoGymRepository) SetSubscription(ctx context.Context, gymID primitive.ObjectID, sub domain.GymSubscription) error {
	update := bson.M{"$set": bson.M{"subscription": sub, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": gymID}, update)
	if err != nil {
		return errors.Wrap(err, "unable to update gym subscription")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureGymIndexes creates necessary indexes for the gyms collection.
func EnsureGymIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "managers", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

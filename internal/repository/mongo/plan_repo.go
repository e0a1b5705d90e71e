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

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository backed by MongoDB.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(plansCollection),
	}
}

// Create inserts a new plan into the database.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.Name == "" || plan.Gym == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan name and gym are required")
	}

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "unable to insert plan")
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a plan by its ID, active or not.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "unable to find plan")
	}
	return &plan, nil
}

// GetByIDs loads the plans among ids, including deactivated ones.
func (r *mongoPlanRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
	if len(ids) == 0 {
		return []domain.Plan{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// ListActiveByGym returns a gym's active plans, cheapest first.
func (r *mongoPlanRepository) ListActiveByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Plan, error) {
	return r.find(ctx, bson.M{"gym": gymID, "isActive": true}, options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
}

func (r *mongoPlanRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]domain.Plan, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list plans")
	}
	defer cursor.Close(ctx)

	var plans []domain.Plan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, errors.Wrap(err, "unable to decode plans")
	}
	return plans, nil
}

// Update modifies an existing plan. The owning gym never changes.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":           plan.Name,
			"duration":       plan.Duration,
			"durationInDays": plan.DurationInDays,
			"price":          plan.Price,
			"description":    plan.Description,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return errors.Wrap(err, "unable to update plan")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Deactivate hides a plan from new enrollments. Members already on the plan keep it.
func (r *mongoPlanRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrap(err, "unable to deactivate plan")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "isActive", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

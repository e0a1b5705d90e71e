package mongo

import (
	"context"
	"regexp"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberRepository creates a new Member repository backed by MongoDB.
func NewMongoMemberRepository(db *mongo.Database) repository.MemberRepository {
	return &mongoMemberRepository{
		collection: db.Collection(membersCollection),
	}
}

// Create inserts a member. A clash on the (gym, memberId) unique index is
// reported as repository.ErrDuplicateKey.
func (r *mongoMemberRepository) Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error) {
	if member.Gym == primitive.NilObjectID || member.MemberID == "" {
		return primitive.NilObjectID, errors.New("member gym and memberId are required")
	}

	member.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, errors.Wrap(err, "unable to insert member")
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoMemberRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	var member domain.Member
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "unable to find member")
	}
	return &member, nil
}

// GetByIDs returns the members among ids in no particular order.
func (r *mongoMemberRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Member, error) {
	if len(ids) == 0 {
		return []domain.Member{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// ExistsByMemberID reports whether memberID is already taken in the gym,
// including by soft-deleted members.
func (r *mongoMemberRepository) ExistsByMemberID(ctx context.Context, gymID primitive.ObjectID, memberID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"gym": gymID, "memberId": memberID}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "unable to check member id")
	}
	return n > 0, nil
}

// List returns one page of active members, newest first, with the total count.
func (r *mongoMemberRepository) List(ctx context.Context, filter repository.MemberFilter, page repository.Page) ([]domain.Member, int64, error) {
	query := memberListQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to count members")
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	members, err := r.find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// memberListQuery translates a MemberFilter into a Mongo filter. Status is
// derived from the end date and freeze flag, not the stored snapshot.
func memberListQuery(f repository.MemberFilter) bson.M {
	query := bson.M{"gym": f.GymID, "isActive": true}

	switch f.Status {
	case domain.MembershipActive:
		query["isFrozen"] = false
		query["$or"] = bson.A{
			bson.M{"membershipEndDate": nil},
			bson.M{"membershipEndDate": bson.M{"$gte": f.Today}},
		}
	case domain.MembershipExpired:
		query["isFrozen"] = false
		query["membershipEndDate"] = bson.M{"$lt": f.Today}
	case domain.MembershipFrozen:
		query["isFrozen"] = true
	}

	if f.Batch != "" {
		query["batch"] = f.Batch
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		search := bson.A{
			bson.M{"name": pattern},
			bson.M{"phoneNumber": pattern},
			bson.M{"memberId": pattern},
		}
		if existing, ok := query["$or"]; ok {
			delete(query, "$or")
			query["$and"] = bson.A{bson.M{"$or": existing}, bson.M{"$or": search}}
		} else {
			query["$or"] = search
		}
	}
	return query
}

// ListActiveByGym returns every active member of a gym.
func (r *mongoMemberRepository) ListActiveByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Member, error) {
	return r.find(ctx, bson.M{"gym": gymID, "isActive": true}, nil)
}

func (r *mongoMemberRepository) CountActiveByGym(ctx context.Context, gymID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"gym": gymID, "isActive": true})
	if err != nil {
		return 0, errors.Wrap(err, "unable to count members")
	}
	return n, nil
}

func (r *mongoMemberRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Member, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query members")
	}
	defer cursor.Close(ctx)

	var members []domain.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, errors.Wrap(err, "unable to decode members")
	}
	return members, nil
}

// Update writes every mutable field. gym, memberId and createdAt never change.
func (r *mongoMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	if member.ID == primitive.NilObjectID {
		return errors.New("member ID is required for update")
	}

	member.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":                member.Name,
			"phoneNumber":         member.PhoneNumber,
			"gender":              member.Gender,
			"batch":               member.Batch,
			"email":               member.Email,
			"height":              member.Height,
			"weight":              member.Weight,
			"address":             member.Address,
			"notes":               member.Notes,
			"dateOfBirth":         member.DateOfBirth,
			"image":               member.Image,
			"joiningDate":         member.JoiningDate,
			"currentPlan":         member.CurrentPlan,
			"membershipStartDate": member.MembershipStartDate,
			"membershipEndDate":   member.MembershipEndDate,
			"membershipStatus":    member.MembershipStatus,
			"planPrice":           member.PlanPrice,
			"discount":            member.Discount,
			"finalPrice":          member.FinalPrice,
			"amountPaid":          member.AmountPaid,
			"dueAmount":           member.DueAmount,
			"isFrozen":            member.IsFrozen,
			"frozenDate":          member.FrozenDate,
			"updatedAt":           member.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": member.ID, "isActive": true}, update)
	if err != nil {
		return errors.Wrap(err, "unable to update member")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete flags the member inactive; ledger and history stay intact.
func (r *mongoMemberRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "isActive": true}, update)
	if err != nil {
		return errors.Wrap(err, "unable to delete member")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMemberIndexes creates necessary indexes for the members collection.
func EnsureMemberIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gym", Value: 1}, {Key: "memberId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("gym_member_id_unique"),
		},
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "membershipEndDate", Value: 1}}},
		{Keys: bson.D{{Key: "gym", Value: 1}, {Key: "dateOfBirth", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

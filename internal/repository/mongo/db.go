package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names.
const (
	usersCollection        = "users"
	gymsCollection         = "gyms"
	plansCollection        = "plans"
	membersCollection      = "members"
	transactionsCollection = "transactions"
	historyCollection      = "membership_histories"
	subscriptionCollection = "subscriptions"
)

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to mongodb")
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, errors.Wrap(err, "unable to ping mongodb")
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are logged
// per collection and do not stop the remaining collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zerolog.Logger) {
	steps := []struct {
		collection string
		ensure     func(context.Context, *mongo.Collection) error
	}{
		{usersCollection, EnsureUserIndexes},
		{gymsCollection, EnsureGymIndexes},
		{plansCollection, EnsurePlanIndexes},
		{membersCollection, EnsureMemberIndexes},
		{transactionsCollection, EnsureTransactionIndexes},
		{historyCollection, EnsureMembershipHistoryIndexes},
		{subscriptionCollection, EnsureSubscriptionIndexes},
	}

	for _, step := range steps {
		if err := step.ensure(ctx, db.Collection(step.collection)); err != nil {
			logger.Warn().Err(err).Str("collection", step.collection).Msg("failed to create indexes")
			continue
		}
		logger.Debug().Str("collection", step.collection).Msg("indexes ensured")
	}
}

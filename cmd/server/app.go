package main

import (
	"context"
	"strings"

	"alcyxob/gym-manager/internal/api"
	"alcyxob/gym-manager/internal/cache"
	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/events"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/membership"
	"alcyxob/gym-manager/internal/payment"
	"alcyxob/gym-manager/internal/repository"
	mongorepo "alcyxob/gym-manager/internal/repository/mongo"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/storage"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

type repositories struct {
	users         repository.UserRepository
	gyms          repository.GymRepository
	plans         repository.PlanRepository
	members       repository.MemberRepository
	transactions  repository.TransactionRepository
	history       repository.MembershipHistoryRepository
	subscriptions repository.SubscriptionRepository
}

// app owns every long-lived dependency of the process.
type app struct {
	cfg      config.Config
	logger   *zerolog.Logger
	client   *mongo.Client
	db       *mongo.Database
	repos    repositories
	services api.Services
	closers  []func() error
}

// newApp connects to MongoDB and builds the repositories. Services are
// wired separately by wireServices since not every command needs them.
func newApp(cfg config.Config) (*app, error) {
	log := logger.New(cfg.Log)

	client, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to mongodb")
	}
	db := client.Database(cfg.Database.Name)

	a := &app{
		cfg:    cfg,
		logger: log,
		client: client,
		db:     db,
		repos: repositories{
			users:         mongorepo.NewMongoUserRepository(db),
			gyms:          mongorepo.NewMongoGymRepository(db),
			plans:         mongorepo.NewMongoPlanRepository(db),
			members:       mongorepo.NewMongoMemberRepository(db),
			transactions:  mongorepo.NewMongoTransactionRepository(db),
			history:       mongorepo.NewMongoMembershipHistoryRepository(db),
			subscriptions: mongorepo.NewMongoSubscriptionRepository(db),
		},
	}
	a.closers = append(a.closers, func() error { return mongorepo.DisconnectDB(client) })
	log.Info().Str("database", cfg.Database.Name).Msg("connected to mongodb")
	return a, nil
}

func (a *app) dashboardCache(ctx context.Context) (cache.DashboardCache, error) {
	switch strings.ToLower(a.cfg.Analytics.CacheDriver) {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "unable to connect to redis")
		}
		a.closers = append(a.closers, rdb.Close)
		return cache.NewRedisCache(rdb), nil
	case "none":
		return cache.NopCache{}, nil
	default:
		return nil, errors.Errorf("unknown analytics cache driver %q", a.cfg.Analytics.CacheDriver)
	}
}

func (a *app) publisher() (events.Publisher, error) {
	if !a.cfg.RabbitMQ.Enabled {
		return events.NewLogPublisher(a.logger), nil
	}
	p, err := events.NewAMQPPublisher(a.cfg.RabbitMQ)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to rabbitmq")
	}
	a.closers = append(a.closers, p.Close)
	return p, nil
}

func (a *app) fileStorage(ctx context.Context) (storage.FileStorage, error) {
	if a.cfg.S3.BucketName == "" {
		a.logger.Warn().Msg("s3 bucket not configured, member photo uploads are disabled")
		return nil, nil
	}
	return storage.NewS3Storage(ctx, a.cfg.S3, a.logger)
}

func (a *app) wireServices(ctx context.Context) error {
	dashboardCache, err := a.dashboardCache(ctx)
	if err != nil {
		return err
	}
	publisher, err := a.publisher()
	if err != nil {
		return err
	}
	files, err := a.fileStorage(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to initialize file storage")
	}

	r := a.repos
	tx := mongorepo.NewTxManager(a.client, a.cfg.Database.Transactions)
	gate := service.NewAccessGate(r.gyms)
	classifier := membership.NewClassifier(a.cfg.App.Location(), a.cfg.App.ExpiringSoonDays)

	a.services = api.Services{
		Auth:         service.NewAuthService(r.users, r.gyms, a.cfg.JWT.Secret, a.cfg.JWT.Expiration, a.logger),
		Gym:          service.NewGymService(gate, r.gyms, r.users, tx, a.cfg.App, a.logger),
		Plan:         service.NewPlanService(gate, r.plans, dashboardCache, a.logger),
		Member:       service.NewMemberService(gate, r.members, r.plans, r.transactions, r.history, tx, dashboardCache, publisher, files, classifier, a.logger),
		Analytics:    service.NewAnalyticsService(gate, r.members, r.transactions, dashboardCache, a.cfg.Analytics.CacheTTL, classifier, a.logger),
		Transaction:  service.NewTransactionService(gate, r.transactions, r.members),
		Manager:      service.NewManagerService(r.users, r.gyms, tx, a.logger),
		Subscription: service.NewSubscriptionService(gate, r.subscriptions, r.gyms, r.members, payment.NewHMACVerifier(a.cfg.Payment.KeySecret), tx, a.logger),
	}
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error().Err(err).Msg("unable to release resource")
		}
	}
}

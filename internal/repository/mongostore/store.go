// Package mongostore implements the repository contract on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/repository"
)

const (
	usersCollection         = "users"
	postsCollection         = "posts"
	notificationsCollection = "notifications"
	announcementsCollection = "announcements"
)

// Store is the MongoDB-backed repository.Store
type Store struct {
	client        *mongo.Client
	db            *mongo.Database
	users         *userRepository
	posts         *postRepository
	notifications *notificationRepository
	announcements *announcementRepository
}

// Open connects to uri, pings it and ensures indexes on database dbName
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:        client,
		db:            db,
		users:         &userRepository{coll: db.Collection(usersCollection)},
		posts:         &postRepository{coll: db.Collection(postsCollection)},
		notifications: &notificationRepository{coll: db.Collection(notificationsCollection)},
		announcements: &announcementRepository{coll: db.Collection(announcementsCollection)},
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Log.Info("✅ Connected to MongoDB", zap.String("database", dbName))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "author.id", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "comments.author.id", Value: 1}}},
			{Keys: bson.D{{Key: "likedBy", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "isRead", Value: 1}}},
			{Keys: bson.D{{Key: "broadcastId", Value: 1}}},
		},
		announcementsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for coll, specs := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Posts() repository.PostRepository                 { return s.posts }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }
func (s *Store) Announcements() repository.AnnouncementRepository { return s.announcements }

// Database exposes the underlying database for maintenance commands
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) NewID() string { return primitive.NewObjectID().Hex() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Clean empties every collection
func (s *Store) Clean(ctx context.Context) error {
	for _, name := range []string{notificationsCollection, announcementsCollection, postsCollection, usersCollection} {
		if _, err := s.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clean %s: %w", name, err)
		}
	}
	return nil
}

// Drop removes the whole database; used by tests
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// translate maps driver errors onto repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrConflict
	}
	return err
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func findPage(limit, offset int, sort bson.D) *options.FindOptions {
	return options.Find().SetSort(sort).SetLimit(int64(limit)).SetSkip(int64(offset))
}

var _ repository.Store = (*Store)(nil)

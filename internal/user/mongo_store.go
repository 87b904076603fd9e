package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique email/username indexes that back the
// duplicate-account check.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"username": bson.M{"$gt": ""}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Lookup(ctx context.Context, identifier string) (*User, error) {
	ident := strings.ToLower(identifier)
	filter := bson.M{"$or": bson.A{
		bson.M{"email": ident},
		bson.M{"username": ident},
	}}

	var u User
	err := s.collection.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) Create(ctx context.Context, params CreateParams) (*User, error) {
	role := params.Role
	if role == "" {
		role = "user"
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(params.Email),
		Username:     strings.ToLower(params.Username),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		DisplayName:  params.DisplayName,
		Role:         role,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}

	_, err := s.collection.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

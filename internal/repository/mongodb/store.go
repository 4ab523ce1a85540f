// Package mongodb implements the store on MongoDB. Collections and field names
// follow the users / events / messages documents of the hosted database the
// app was first written against, so existing data can be read as-is.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"virtualevents/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	eventsCollection   = "events"
	messagesCollection = "messages"
)

// Store is a domain.Store over one database.
type Store struct {
	client *mongo.Client

	users    *userRepo
	events   *eventRepo
	messages *messageRepo
}

var _ domain.Store = (*Store)(nil)

// NewStore wraps db. The caller owns the client.
func NewStore(db *mongo.Database) *Store {
	return &Store{
		users:    &userRepo{coll: db.Collection(usersCollection)},
		events:   &eventRepo{coll: db.Collection(eventsCollection), messages: db.Collection(messagesCollection)},
		messages: &messageRepo{coll: db.Collection(messagesCollection)},
	}
}

// Connect dials uri, pings the primary and makes sure usernames are unique.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}
	s := NewStore(client.Database(database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the unique username index and the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo: creating users index: %w", err)
	}
	if _, err := s.messages.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "timestamp", Value: 1}},
	}); err != nil {
		return fmt.Errorf("mongo: creating messages index: %w", err)
	}
	return nil
}

// Close disconnects the client opened by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Events() domain.EventRepository     { return s.events }
func (s *Store) Messages() domain.MessageRepository { return s.messages }

// objectID parses a hex id. Anything unparseable cannot exist, so it is ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"virtualevents/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   string             `bson:"eventId"`
	EventName string             `bson:"eventName"`
	Sender    string             `bson:"sender"`
	Text      string             `bson:"text"`
	Timestamp time.Time          `bson:"timestamp"`
}

type messageRepo struct {
	coll *mongo.Collection
}

func (r *messageRepo) Create(ctx context.Context, m *domain.Message) error {
	res, err := r.coll.InsertOne(ctx, messageDoc{
		EventID:   m.EventID,
		EventName: m.EventName,
		Sender:    m.Sender,
		Text:      m.Text,
		Timestamp: m.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("mongo: creating message: %w", err)
	}
	m.ID = insertedID(res)
	return nil
}

func (r *messageRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Message, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"eventId": eventID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing messages: %w", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding messages: %w", err)
	}
	msgs := make([]*domain.Message, 0, len(docs))
	for _, d := range docs {
		msgs = append(msgs, &domain.Message{
			ID:        d.ID.Hex(),
			EventID:   d.EventID,
			EventName: d.EventName,
			Sender:    d.Sender,
			Text:      d.Text,
			Timestamp: d.Timestamp,
		})
	}
	return msgs, nil
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"virtualevents/internal/domain"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// eventDoc keeps the organizer under "username", as the original documents do.
type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Slug      string             `bson:"slug,omitempty"`
	Date      string             `bson:"date"`
	Time      string             `bson:"time"`
	Organizer string             `bson:"username"`
	Attendees []string           `bson:"attendees"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *eventDoc) toDomain() *domain.Event {
	attendees := d.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	s := d.Slug
	if s == "" {
		s = slug.Make(d.Name)
	}
	return &domain.Event{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Slug:      s,
		Date:      d.Date,
		Time:      d.Time,
		Organizer: d.Organizer,
		Attendees: attendees,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type eventRepo struct {
	coll     *mongo.Collection
	messages *mongo.Collection
}

func (r *eventRepo) Create(ctx context.Context, e *domain.Event) error {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	res, err := r.coll.InsertOne(ctx, eventDoc{
		Name:      e.Name,
		Slug:      e.Slug,
		Date:      e.Date,
		Time:      e.Time,
		Organizer: e.Organizer,
		Attendees: attendees,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("mongo: creating event: %w", err)
	}
	e.ID = insertedID(res)
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc eventDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

// List returns events in insertion order; ObjectIDs grow with creation time.
func (r *eventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: listing events: %w", err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding events: %w", err)
	}
	events := make([]*domain.Event, 0, len(docs))
	for i := range docs {
		events = append(events, docs[i].toDomain())
	}
	return events, nil
}

func (r *eventRepo) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": updatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
		set["slug"] = slug.Make(*patch.Name)
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Time != nil {
		set["time"] = *patch.Time
	}
	if patch.Attendees != nil {
		attendees := *patch.Attendees
		if attendees == nil {
			attendees = []string{}
		}
		set["attendees"] = attendees
	}

	var doc eventDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

// Delete removes the event and its chat messages.
func (r *eventRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: deleting event: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.messages.DeleteMany(ctx, bson.M{"eventId": id}); err != nil {
		return fmt.Errorf("mongo: deleting event messages: %w", err)
	}
	return nil
}

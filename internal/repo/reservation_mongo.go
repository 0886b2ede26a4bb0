package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// mongoReservation is the stored document shape.
type mongoReservation struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Time      string    `bson:"time"`
	CreatedAt time.Time `bson:"created_at"`
}

// mongoReservationRepo is the MongoDB implementation of ReservationRepo.
// A unique index on "time" rejects the second insert for a slot.
type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo wraps coll and makes sure the unique slot index exists.
func NewMongoReservationRepo(ctx context.Context, coll *mongo.Collection) (ReservationRepo, error) {
	r := &mongoReservationRepo{coll: coll}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoReservationRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "time", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_time"),
	})
	if err != nil {
		return fmt.Errorf("repo.mongoReservationRepo.ensureIndexes: %w", unavailable(err))
	}
	return nil
}

func (r *mongoReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repo.mongoReservationRepo.List: %w", unavailable(err))
	}
	defer cursor.Close(ctx)

	var docs []mongoReservation
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("repo.mongoReservationRepo.List: decode: %w", unavailable(err))
	}

	out := make([]domain.Reservation, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *mongoReservationRepo) FindByTime(ctx context.Context, label string) (domain.Reservation, error) {
	var doc mongoReservation
	err := r.coll.FindOne(ctx, bson.M{"time": label}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Reservation{}, fmt.Errorf("repo.mongoReservationRepo.FindByTime: %w", domain.ErrNotFound)
		}
		return domain.Reservation{}, fmt.Errorf("repo.mongoReservationRepo.FindByTime: %w", unavailable(err))
	}
	return doc.toDomain(), nil
}

func (r *mongoReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	doc := mongoReservation{
		ID:        uuid.NewString(),
		Name:      res.Name,
		Time:      res.Time,
		CreatedAt: res.CreatedAt.UTC().Truncate(time.Millisecond), // BSON dates carry milliseconds
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Reservation{}, fmt.Errorf("repo.mongoReservationRepo.Create: %w", domain.ErrSlotTaken)
		}
		return domain.Reservation{}, fmt.Errorf("repo.mongoReservationRepo.Create: %w", unavailable(err))
	}
	return doc.toDomain(), nil
}

// DeleteAll deletes the documents present when the call starts, one at a
// time, collecting the IDs whose deletion failed.
func (r *mongoReservationRepo) DeleteAll(ctx context.Context) (domain.ClearResult, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return domain.ClearResult{}, fmt.Errorf("repo.mongoReservationRepo.DeleteAll: %w", unavailable(err))
	}
	var ids []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &ids); err != nil {
		return domain.ClearResult{}, fmt.Errorf("repo.mongoReservationRepo.DeleteAll: decode: %w", unavailable(err))
	}

	var (
		result domain.ClearResult
		errs   []error
	)
	for _, doc := range ids {
		del, err := r.coll.DeleteOne(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			result.Failed = append(result.Failed, doc.ID)
			errs = append(errs, fmt.Errorf("%s: %w", doc.ID, err))
			continue
		}
		// A zero count means someone else removed it first; it is gone either way.
		result.Removed += int(del.DeletedCount)
	}
	return clearOutcome("repo.mongoReservationRepo.DeleteAll", result, errs)
}

func (r *mongoReservationRepo) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("repo.mongoReservationRepo.Ping: %w", unavailable(err))
	}
	return nil
}

func (d mongoReservation) toDomain() domain.Reservation {
	return domain.Reservation{ID: d.ID, Name: d.Name, Time: d.Time, CreatedAt: d.CreatedAt}
}

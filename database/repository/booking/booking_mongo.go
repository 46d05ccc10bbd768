package bookingRepo

import (
	"context"
	"log"
	"time"

	"resolvo/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo is the MongoDB implementation of BookingRepository.
type MongoBookingRepo struct {
	bookingColl       *mongo.Collection
	changeRequestColl *mongo.Collection
}

// NewMongoBookingRepo returns a repo bound to the default database handle.
func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.DB()
	repo := &MongoBookingRepo{
		bookingColl:       db.Collection("bookings"),
		changeRequestColl: db.Collection("change_requests"),
	}
	repo.ensureIndexes()
	return repo
}

// ensureIndexes creates the indexes the store's guarantees depend on. The
// partial unique index on (booking_id, requester_id) over OPEN requests is
// what makes the duplicate-open-request rejection atomic.
func (repo *MongoBookingRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.bookingColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "resolver_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		log.Printf("booking repo: failed to create booking indexes: %v", err)
	}

	_, err = repo.changeRequestColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "requester_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"state": "OPEN"}),
		},
	})
	if err != nil {
		log.Printf("booking repo: failed to create change request indexes: %v", err)
	}
}

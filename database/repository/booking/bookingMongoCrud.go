package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resolvo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.bookingColl.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// patchToSet flattens the non-nil patch fields into a $set document.
func patchToSet(patch models.BookingPatch) bson.M {
	set := bson.M{"updated_at": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		set["payment_status"] = *patch.PaymentStatus
	}
	if patch.TotalPrice != nil {
		set["total_price"] = *patch.TotalPrice
	}
	if patch.ScheduledFor != nil {
		set["scheduled_for"] = *patch.ScheduledFor
	}
	if patch.PaymentRef != nil {
		set["payment_ref"] = *patch.PaymentRef
	}
	return set
}

// UpdateWithVersion performs the compare-and-swap write. The filter carries
// the expected version, so a concurrent writer that got there first makes
// this call a no-match; the patch is never partially applied.
func (repo *MongoBookingRepo) UpdateWithVersion(ctx context.Context, bookingID string, patch models.BookingPatch, expectedVersion int64) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "version": expectedVersion}
	update := bson.M{
		"$set": patchToSet(patch),
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := repo.bookingColl.FindOneAndUpdate(ctxWithTimeout, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish a stale version from a missing booking.
			count, countErr := repo.bookingColl.CountDocuments(ctxWithTimeout, bson.M{"id": bookingID})
			if countErr != nil {
				return nil, fmt.Errorf("error updating booking %s: %w", bookingID, countErr)
			}
			if count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("error updating booking %s: %w", bookingID, err)
	}

	if patch.Status != nil && patch.Status.IsTerminal() {
		if _, err := repo.closeOpenChangeRequests(ctxWithTimeout, bookingID); err != nil {
			return nil, fmt.Errorf("error cascading change request closure for booking %s: %w", bookingID, err)
		}
	}

	return &updated, nil
}

// ListByParty returns bookings where the account is either the client or the
// resolver, newest first.
func (repo *MongoBookingRepo) ListByParty(ctx context.Context, accountID string, limit, offset int64) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"client_id": accountID},
		{"resolver_id": accountID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := repo.bookingColl.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for account %s: %w", accountID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings for account %s: %w", accountID, err)
	}
	return bookings, nil
}

// ListAll returns bookings across all parties, newest first. Admin surface.
func (repo *MongoBookingRepo) ListAll(ctx context.Context, limit, offset int64) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := repo.bookingColl.Find(ctxWithTimeout, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

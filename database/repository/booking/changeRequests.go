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

// InsertChangeRequest persists a new OPEN change request. The partial unique
// index rejects a second OPEN request from the same requester on the same
// booking, which InsertChangeRequest reports as ErrDuplicateOpenRequest.
func (repo *MongoBookingRepo) InsertChangeRequest(ctx context.Context, cr *models.ChangeRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.changeRequestColl.InsertOne(ctxWithTimeout, cr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOpenRequest
		}
		return fmt.Errorf("error creating change request: %w", err)
	}
	return nil
}

// GetChangeRequestByID retrieves a change request by its ID.
func (repo *MongoBookingRepo) GetChangeRequestByID(ctx context.Context, changeRequestID string) (*models.ChangeRequest, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cr models.ChangeRequest
	err := repo.changeRequestColl.FindOne(ctxWithTimeout, bson.M{"id": changeRequestID}).Decode(&cr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching change request %s: %w", changeRequestID, err)
	}
	return &cr, nil
}

// FinalizeChangeRequest transitions an OPEN request to a terminal state.
// The filter requires state == OPEN, so only the first writer succeeds.
func (repo *MongoBookingRepo) FinalizeChangeRequest(ctx context.Context, changeRequestID string, state models.ChangeRequestState, resolvedBy string) (*models.ChangeRequest, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"id": changeRequestID, "state": models.ChangeRequestOpen}
	update := bson.M{"$set": bson.M{
		"state":       state,
		"resolved_by": resolvedBy,
		"resolved_at": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cr models.ChangeRequest
	err := repo.changeRequestColl.FindOneAndUpdate(ctxWithTimeout, filter, update, opts).Decode(&cr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			count, countErr := repo.changeRequestColl.CountDocuments(ctxWithTimeout, bson.M{"id": changeRequestID})
			if countErr != nil {
				return nil, fmt.Errorf("error finalizing change request %s: %w", changeRequestID, countErr)
			}
			if count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("error finalizing change request %s: %w", changeRequestID, err)
	}
	return &cr, nil
}

// closeOpenChangeRequests marks every OPEN request on the booking REJECTED.
// Invoked by the store when the booking reaches a terminal status.
func (repo *MongoBookingRepo) closeOpenChangeRequests(ctx context.Context, bookingID string) (int64, error) {
	filter := bson.M{"booking_id": bookingID, "state": models.ChangeRequestOpen}
	update := bson.M{"$set": bson.M{
		"state":       models.ChangeRequestRejected,
		"resolved_by": "system",
		"resolved_at": time.Now(),
	}}

	res, err := repo.changeRequestColl.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListChangeRequests returns all change requests for a booking, newest first.
func (repo *MongoBookingRepo) ListChangeRequests(ctx context.Context, bookingID string) ([]models.ChangeRequest, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.changeRequestColl.Find(ctxWithTimeout, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing change requests for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var requests []models.ChangeRequest
	if err := cursor.All(ctxWithTimeout, &requests); err != nil {
		return nil, fmt.Errorf("error decoding change requests for booking %s: %w", bookingID, err)
	}
	return requests, nil
}

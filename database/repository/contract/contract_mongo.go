package contractRepo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"resolvo/database"
	"resolvo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContractRepo is the MongoDB implementation of ContractRepository.
type MongoContractRepo struct {
	contractColl *mongo.Collection
}

// NewMongoContractRepo returns a repo bound to the default database handle.
func NewMongoContractRepo() *MongoContractRepo {
	repo := &MongoContractRepo{
		contractColl: database.DB().Collection("contracts"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoContractRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.contractColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		log.Printf("contract repo: failed to create indexes: %v", err)
	}
}

// Create inserts a new contract document.
func (repo *MongoContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.contractColl.InsertOne(ctxWithTimeout, contract)
	if err != nil {
		return fmt.Errorf("error creating contract: %w", err)
	}
	return nil
}

// GetByID retrieves a contract by its ID.
func (repo *MongoContractRepo) GetByID(ctx context.Context, contractID string) (*models.Contract, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var contract models.Contract
	err := repo.contractColl.FindOne(ctxWithTimeout, bson.M{"id": contractID}).Decode(&contract)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching contract %s: %w", contractID, err)
	}
	return &contract, nil
}

// FinalizeResponse records the answer with a conditional update: the filter
// only matches contracts still in DRAFT or SENT, so a second response never
// overwrites the recorded decision.
func (repo *MongoContractRepo) FinalizeResponse(ctx context.Context, contractID string, status models.ContractStatus, signatureData *string) (*models.Contract, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     contractID,
		"status": bson.M{"$in": []models.ContractStatus{models.ContractDraft, models.ContractSent}},
	}
	set := bson.M{
		"status":       status,
		"responded_at": time.Now(),
	}
	if signatureData != nil {
		set["signature_data"] = *signatureData
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var contract models.Contract
	err := repo.contractColl.FindOneAndUpdate(ctxWithTimeout, filter, bson.M{"$set": set}, opts).Decode(&contract)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			count, countErr := repo.contractColl.CountDocuments(ctxWithTimeout, bson.M{"id": contractID})
			if countErr != nil {
				return nil, fmt.Errorf("error finalizing contract %s: %w", contractID, countErr)
			}
			if count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrAlreadyFinal
		}
		return nil, fmt.Errorf("error finalizing contract %s: %w", contractID, err)
	}
	return &contract, nil
}

// ListByBooking returns contracts attached to a booking, newest first.
func (repo *MongoContractRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Contract, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.contractColl.Find(ctxWithTimeout, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing contracts for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var contracts []models.Contract
	if err := cursor.All(ctxWithTimeout, &contracts); err != nil {
		return nil, fmt.Errorf("error decoding contracts for booking %s: %w", bookingID, err)
	}
	return contracts, nil
}

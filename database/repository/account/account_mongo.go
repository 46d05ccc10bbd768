package accountRepo

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

// MongoAccountRepo is the MongoDB implementation of AccountRepository.
type MongoAccountRepo struct {
	accountColl *mongo.Collection
}

// NewMongoAccountRepo returns a repo bound to the default database handle.
func NewMongoAccountRepo() *MongoAccountRepo {
	repo := &MongoAccountRepo{
		accountColl: database.DB().Collection("accounts"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoAccountRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.accountColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		log.Printf("account repo: failed to create indexes: %v", err)
	}
}

// Create inserts a new account document.
func (repo *MongoAccountRepo) Create(ctx context.Context, account *models.Account) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.accountColl.InsertOne(ctxWithTimeout, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID.
func (repo *MongoAccountRepo) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var account models.Account
	err := repo.accountColl.FindOne(ctxWithTimeout, bson.M{"id": accountID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching account %s: %w", accountID, err)
	}
	return &account, nil
}

// GetByEmail retrieves an account by email.
func (repo *MongoAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var account models.Account
	err := repo.accountColl.FindOne(ctxWithTimeout, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching account by email: %w", err)
	}
	return &account, nil
}

// SetTokenHash stores the hash of the account's current bearer token.
func (repo *MongoAccountRepo) SetTokenHash(ctx context.Context, accountID, tokenHash string) error {
	return repo.setField(ctx, accountID, "token_hash", tokenHash)
}

// SetFCMToken stores the account's push notification token.
func (repo *MongoAccountRepo) SetFCMToken(ctx context.Context, accountID, fcmToken string) error {
	return repo.setField(ctx, accountID, "fcm_token", fcmToken)
}

func (repo *MongoAccountRepo) setField(ctx context.Context, accountID, field, value string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.accountColl.UpdateOne(
		ctxWithTimeout,
		bson.M{"id": accountID},
		bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error updating account %s: %w", accountID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

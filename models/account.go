package models

import "time"

// AccountRole distinguishes the two marketplace parties plus moderators.
type AccountRole string

const (
	RoleClient   AccountRole = "client"
	RoleResolver AccountRole = "resolver"
	RoleAdmin    AccountRole = "admin"
)

// Account is a marketplace identity: a client booking services, a resolver
// providing them, or an admin moderating. Authentication state is a single
// hashed bearer token; the auth middleware caches the hash in Redis.
type Account struct {
	ID           string      `bson:"id" json:"id"`
	Role         AccountRole `bson:"role" json:"role"`
	Email        string      `bson:"email" json:"email"`
	DisplayName  string      `bson:"display_name" json:"displayName"`
	PasswordHash string      `bson:"password_hash" json:"-"`
	TokenHash    string      `bson:"token_hash,omitempty" json:"-"`
	FCMToken     string      `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt    time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updatedAt"`
}

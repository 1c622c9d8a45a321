package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a registered user. The password is stored only as a bcrypt
// hash and never leaves the storage layer in responses.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password" json:"-"`
	Admin        bool               `bson:"admin" json:"admin"`
}

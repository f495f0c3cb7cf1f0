package models

import "time"

// User is a registered account. Password holds the bcrypt hash and is never
// serialized to JSON.
type User struct {
	ID        string    `json:"id" bson:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255)"`
	FirstName string    `json:"firstName" bson:"firstName"`
	LastName  string    `json:"lastName" bson:"lastName"`
	Password  string    `json:"-" bson:"password" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

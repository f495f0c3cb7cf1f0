package models

// Gift is a listing in the gift catalogue. The same field names are used for
// the Mongo document, the JSON body and the relational columns.
type Gift struct {
	ID          string  `json:"id" bson:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" bson:"description" validate:"omitempty,max=1000"`
	Category    string  `json:"category" bson:"category" gorm:"index" validate:"required,max=50"`
	Condition   string  `json:"condition" bson:"condition" validate:"omitempty,oneof=New 'Like New' Older"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	PostedBy    string  `json:"posted_by" bson:"posted_by"`
	Zipcode     string  `json:"zipcode" bson:"zipcode" validate:"omitempty,max=10"`
	DateAdded   int64   `json:"date_added" bson:"date_added"`
	AgeDays     int     `json:"age_days" bson:"age_days" validate:"gte=0"`
	AgeYears    float64 `json:"age_years" bson:"age_years" validate:"gte=0"`
	Image       string  `json:"image" bson:"image" validate:"omitempty,max=500"`
}

package search

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"giftlink/internal/models"
)

// containsRegex matches s literally anywhere in a field, ignoring case.
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// Filter builds the MongoDB filter for c. Top-level keys are ANDed.
func (c Criteria) Filter() bson.D {
	filter := bson.D{}

	if c.Query != "" {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: containsRegex(c.Query)}},
			bson.D{{Key: "description", Value: containsRegex(c.Query)}},
		}})
	}

	if c.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: c.Category})
	}

	price := bson.D{{Key: "$gte", Value: c.Min}}
	if c.Max != nil {
		price = append(price, bson.E{Key: "$lte", Value: *c.Max})
	}
	filter = append(filter, bson.E{Key: "price", Value: price})

	return filter
}

// Scope applies c to a GORM query on the gifts table.
func (c Criteria) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.Query != "" {
			pattern := likePattern(c.Query)
			db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		if c.Category != "" {
			db = db.Where("category = ?", c.Category)
		}
		db = db.Where("price >= ?", c.Min)
		if c.Max != nil {
			db = db.Where("price <= ?", *c.Max)
		}
		return db
	}
}

// Matches reports whether g satisfies c.
func (c Criteria) Matches(g models.Gift) bool {
	if c.Query != "" && !containsFold(g.Name, c.Query) && !containsFold(g.Description, c.Query) {
		return false
	}
	if c.Category != "" && g.Category != c.Category {
		return false
	}
	if g.Price < c.Min {
		return false
	}
	if c.Max != nil && g.Price > *c.Max {
		return false
	}
	return true
}

// Filter builds the MongoDB filter for q.
func (q CatalogQuery) Filter() bson.D {
	filter := bson.D{}
	if q.Name != "" {
		filter = append(filter, bson.E{Key: "name", Value: containsRegex(q.Name)})
	}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	if q.Condition != "" {
		filter = append(filter, bson.E{Key: "condition", Value: q.Condition})
	}
	if q.MaxAgeYears != nil {
		filter = append(filter, bson.E{Key: "age_years", Value: bson.D{{Key: "$lte", Value: *q.MaxAgeYears}}})
	}
	return filter
}

// Scope applies q to a GORM query on the gifts table.
func (q CatalogQuery) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Name != "" {
			db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(q.Name))
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.Condition != "" {
			db = db.Where("condition = ?", q.Condition)
		}
		if q.MaxAgeYears != nil {
			db = db.Where("age_years <= ?", *q.MaxAgeYears)
		}
		return db
	}
}

// Matches reports whether g satisfies q.
func (q CatalogQuery) Matches(g models.Gift) bool {
	if q.Name != "" && !containsFold(g.Name, q.Name) {
		return false
	}
	if q.Category != "" && g.Category != q.Category {
		return false
	}
	if q.Condition != "" && g.Condition != q.Condition {
		return false
	}
	if q.MaxAgeYears != nil && g.AgeYears > float64(*q.MaxAgeYears) {
		return false
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

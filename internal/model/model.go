package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Person is the data structure for a person record. An Id of zero marks a record that has not
// been saved yet; the store assigns the Id on the first save.
type Person struct {
	Id          int64            `json:"id"          db:"id"            gorm:"primaryKey"`
	FirstName   string           `json:"firstName"   db:"first_name"    form:"firstName"   validate:"required"`
	LastName    string           `json:"lastName"    db:"last_name"     form:"lastName"    validate:"required"`
	DateOfBirth *time.Time       `json:"dateOfBirth" db:"date_of_birth" form:"dateOfBirth" validate:"required,past" gorm:"type:date"`
	Email       string           `json:"email"       db:"email"         form:"email"       validate:"required,email"`
	Salary      *decimal.Decimal `json:"salary"      db:"salary"        form:"salary"      validate:"required,amountmin=1000" gorm:"type:decimal(12,2)"`
}

// TableName tells gorm which table holds the people.
func (Person) TableName() string {
	return "people"
}

// PersonForm holds the values of the person form exactly as they travel over the wire. It is
// filled either from a submission, so that invalid input can be shown again unchanged, or from
// a stored person when an edit begins.
type PersonForm struct {
	Id          string
	FirstName   string
	LastName    string
	DateOfBirth string
	Email       string
	Salary      string
}

package owner

import (
	"database/sql"
	"strings"
	"time"
)

// DateLayout is the wire and form format for birth and visit dates.
const DateLayout = "2006-01-02"

// Owner is a clinic customer.
type Owner struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Address   string `db:"address" json:"address"`
	City      string `db:"city" json:"city"`
	Telephone string `db:"telephone" json:"telephone"`
}

// FullName joins first and last name.
func (o Owner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// PetType is the species of a pet (cat, dog, ...).
type PetType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Pet belongs to exactly one owner and has a required type.
type Pet struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	BirthDate time.Time `db:"birth_date" json:"birthDate"`
	TypeID    int64     `db:"type_id" json:"typeId"`
	OwnerID   int64     `db:"owner_id" json:"ownerId"`
}

// Visit records one appointment of a pet.
type Visit struct {
	ID          int64     `db:"id" json:"id"`
	PetID       int64     `db:"pet_id" json:"petId"`
	Date        time.Time `db:"visit_date" json:"date"`
	Description string    `db:"description" json:"description"`
}

// DetailRow is one row of owners LEFT JOIN pets LEFT JOIN types LEFT JOIN
// visits. Owner columns repeat for every pet/visit combination; pet and visit
// columns are null when the join found nothing.
type DetailRow struct {
	OwnerID          int64          `db:"owner_id"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	Address          string         `db:"address"`
	City             string         `db:"city"`
	Telephone        string         `db:"telephone"`
	PetID            sql.NullInt64  `db:"pet_id"`
	PetName          sql.NullString `db:"pet_name"`
	BirthDate        sql.NullTime   `db:"birth_date"`
	TypeID           sql.NullInt64  `db:"type_id"`
	TypeName         sql.NullString `db:"type_name"`
	VisitID          sql.NullInt64  `db:"visit_id"`
	VisitDate        sql.NullTime   `db:"visit_date"`
	VisitDescription sql.NullString `db:"visit_description"`
}

// Owner returns the owner columns of the row.
func (r DetailRow) Owner() Owner {
	return Owner{
		ID:        r.OwnerID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Address:   r.Address,
		City:      r.City,
		Telephone: r.Telephone,
	}
}

// Details is an owner with its pets, their types and visits.
type Details struct {
	Owner
	Pets []PetDetails `json:"pets"`
}

// Pet looks up one of the owner's pets.
func (d Details) Pet(id int64) (PetDetails, bool) {
	for _, p := range d.Pets {
		if p.ID == id {
			return p, true
		}
	}
	return PetDetails{}, false
}

// PetDetails is a pet with its type and visit history.
type PetDetails struct {
	Pet
	Type   PetType `json:"type"`
	Visits []Visit `json:"visits"`
}

// Summary is one line of the owner search results.
type Summary struct {
	Owner
	PetNames string `db:"pet_names" json:"petNames"`
}

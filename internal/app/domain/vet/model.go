package vet

import (
	"database/sql"
	"strings"
)

// Vet is a veterinarian.
type Vet struct {
	ID        int64  `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// FullName joins first and last name.
func (v Vet) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// Specialty is a field a vet is qualified in.
type Specialty struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Row is one row of vets LEFT JOIN vet_specialties LEFT JOIN specialties.
type Row struct {
	VetID         int64          `db:"vet_id"`
	FirstName     string         `db:"first_name"`
	LastName      string         `db:"last_name"`
	SpecialtyID   sql.NullInt64  `db:"specialty_id"`
	SpecialtyName sql.NullString `db:"specialty_name"`
}

// WithSpecialties is a vet and every specialty it holds.
type WithSpecialties struct {
	Vet
	Specialties []Specialty
}

// SpecialtyNames returns the specialty names in order, or "none".
func (v WithSpecialties) SpecialtyNames() string {
	if len(v.Specialties) == 0 {
		return "none"
	}
	names := make([]string, len(v.Specialties))
	for i, s := range v.Specialties {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

// Package storage declares the persistence contracts consumed by the
// application services. Implementations return flat join rows; reshaping them
// into nested views is the services' job.
package storage

import (
	"context"
	"errors"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// OwnerStore persists owners and answers owner queries.
type OwnerStore interface {
	CreateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error)
	UpdateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error)
	GetOwner(ctx context.Context, id int64) (owner.Owner, error)

	// OwnerDetailRows returns owners LEFT JOIN pets LEFT JOIN types LEFT JOIN
	// visits for a single owner. No rows means the owner does not exist.
	OwnerDetailRows(ctx context.Context, ownerID int64) ([]owner.DetailRow, error)

	// CountOwners counts owners whose last name starts with prefix
	// (case-insensitive, wildcards taken literally).
	CountOwners(ctx context.Context, lastNamePrefix string) (int, error)
	// ListOwnerSummaries returns one page of matching owners ordered by last
	// name, first name and id, with their pet names joined by ", ".
	ListOwnerSummaries(ctx context.Context, lastNamePrefix string, limit, offset int) ([]owner.Summary, error)
}

// PetStore persists pets and pet types.
type PetStore interface {
	ListPetTypes(ctx context.Context) ([]owner.PetType, error)
	CreatePet(ctx context.Context, p owner.Pet) (owner.Pet, error)
	UpdatePet(ctx context.Context, p owner.Pet) (owner.Pet, error)
	GetPet(ctx context.Context, id int64) (owner.Pet, error)
}

// VisitStore persists visits.
type VisitStore interface {
	CreateVisit(ctx context.Context, v owner.Visit) (owner.Visit, error)
	ListVisits(ctx context.Context, petID int64) ([]owner.Visit, error)
}

// VetStore answers vet queries.
type VetStore interface {
	CountVets(ctx context.Context) (int, error)
	// ListVetIDs returns one page of vet ids in ascending order.
	ListVetIDs(ctx context.Context, limit, offset int) ([]int64, error)
	// VetRows returns vets LEFT JOIN vet_specialties LEFT JOIN specialties.
	// A nil ids slice selects every vet.
	VetRows(ctx context.Context, ids []int64) ([]vet.Row, error)
}

// Store bundles every contract; both backends implement it.
type Store interface {
	OwnerStore
	PetStore
	VisitStore
	VetStore
}

// EscapeLike escapes LIKE wildcards so the value matches literally with
// ESCAPE '\'.
func EscapeLike(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

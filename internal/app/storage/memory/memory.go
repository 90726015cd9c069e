package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
	"github.com/R3E-Network/petclinic/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
// Query methods produce the same flat rows the SQL store's LEFT JOINs return.
type Store struct {
	mu sync.RWMutex

	nextOwnerID int64
	nextPetID   int64
	nextVisitID int64

	owners         map[int64]owner.Owner
	pets           map[int64]owner.Pet
	petTypes       map[int64]owner.PetType
	visits         map[int64]owner.Visit
	vets           map[int64]vet.Vet
	specialties    map[int64]vet.Specialty
	vetSpecialties map[int64][]int64
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextOwnerID:    1,
		nextPetID:      1,
		nextVisitID:    1,
		owners:         make(map[int64]owner.Owner),
		pets:           make(map[int64]owner.Pet),
		petTypes:       make(map[int64]owner.PetType),
		visits:         make(map[int64]owner.Visit),
		vets:           make(map[int64]vet.Vet),
		specialties:    make(map[int64]vet.Specialty),
		vetSpecialties: make(map[int64][]int64),
	}
}

// OwnerStore implementation --------------------------------------------------

func (s *Store) CreateOwner(_ context.Context, o owner.Owner) (owner.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == 0 {
		o.ID = s.nextOwnerID
	} else if _, exists := s.owners[o.ID]; exists {
		return owner.Owner{}, fmt.Errorf("owner %d already exists", o.ID)
	}
	if o.ID >= s.nextOwnerID {
		s.nextOwnerID = o.ID + 1
	}
	s.owners[o.ID] = o
	return o, nil
}

func (s *Store) UpdateOwner(_ context.Context, o owner.Owner) (owner.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[o.ID]; !ok {
		return owner.Owner{}, storage.ErrNotFound
	}
	s.owners[o.ID] = o
	return o, nil
}

func (s *Store) GetOwner(_ context.Context, id int64) (owner.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.owners[id]
	if !ok {
		return owner.Owner{}, storage.ErrNotFound
	}
	return o, nil
}

func (s *Store) OwnerDetailRows(_ context.Context, ownerID int64) ([]owner.DetailRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.owners[ownerID]
	if !ok {
		return nil, nil
	}

	base := owner.DetailRow{
		OwnerID:   o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Address:   o.Address,
		City:      o.City,
		Telephone: o.Telephone,
	}

	pets := s.petsOfLocked(ownerID)
	if len(pets) == 0 {
		return []owner.DetailRow{base}, nil
	}

	var rows []owner.DetailRow
	for _, p := range pets {
		row := base
		row.PetID = sql.NullInt64{Int64: p.ID, Valid: true}
		row.PetName = sql.NullString{String: p.Name, Valid: true}
		row.BirthDate = sql.NullTime{Time: p.BirthDate, Valid: !p.BirthDate.IsZero()}
		if t, ok := s.petTypes[p.TypeID]; ok {
			row.TypeID = sql.NullInt64{Int64: t.ID, Valid: true}
			row.TypeName = sql.NullString{String: t.Name, Valid: true}
		}

		visits := s.visitsOfLocked(p.ID)
		if len(visits) == 0 {
			rows = append(rows, row)
			continue
		}
		for _, v := range visits {
			vr := row
			vr.VisitID = sql.NullInt64{Int64: v.ID, Valid: true}
			vr.VisitDate = sql.NullTime{Time: v.Date, Valid: true}
			vr.VisitDescription = sql.NullString{String: v.Description, Valid: true}
			rows = append(rows, vr)
		}
	}
	return rows, nil
}

func (s *Store) CountOwners(_ context.Context, lastNamePrefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.matchingOwnersLocked(lastNamePrefix)), nil
}

func (s *Store) ListOwnerSummaries(_ context.Context, lastNamePrefix string, limit, offset int) ([]owner.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.matchingOwnersLocked(lastNamePrefix)
	if offset >= len(matches) {
		return []owner.Summary{}, nil
	}
	end := len(matches)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	result := make([]owner.Summary, 0, end-offset)
	for _, o := range matches[offset:end] {
		pets := s.petsOfLocked(o.ID)
		names := make([]string, len(pets))
		for i, p := range pets {
			names[i] = p.Name
		}
		sort.Strings(names)
		result = append(result, owner.Summary{Owner: o, PetNames: strings.Join(names, ", ")})
	}
	return result, nil
}

func (s *Store) matchingOwnersLocked(prefix string) []owner.Owner {
	prefix = strings.ToLower(prefix)
	var out []owner.Owner
	for _, o := range s.owners {
		if strings.HasPrefix(strings.ToLower(o.LastName), prefix) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) petsOfLocked(ownerID int64) []owner.Pet {
	var out []owner.Pet
	for _, p := range s.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) visitsOfLocked(petID int64) []owner.Visit {
	var out []owner.Visit
	for _, v := range s.visits {
		if v.PetID == petID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PetStore implementation ----------------------------------------------------

func (s *Store) ListPetTypes(_ context.Context) ([]owner.PetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]owner.PetType, 0, len(s.petTypes))
	for _, t := range s.petTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreatePet(_ context.Context, p owner.Pet) (owner.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[p.OwnerID]; !ok {
		return owner.Pet{}, fmt.Errorf("owner %d: %w", p.OwnerID, storage.ErrNotFound)
	}
	if _, ok := s.petTypes[p.TypeID]; !ok {
		return owner.Pet{}, fmt.Errorf("pet type %d: %w", p.TypeID, storage.ErrNotFound)
	}
	if p.ID == 0 {
		p.ID = s.nextPetID
	} else if _, exists := s.pets[p.ID]; exists {
		return owner.Pet{}, fmt.Errorf("pet %d already exists", p.ID)
	}
	if p.ID >= s.nextPetID {
		s.nextPetID = p.ID + 1
	}
	s.pets[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePet(_ context.Context, p owner.Pet) (owner.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pets[p.ID]; !ok {
		return owner.Pet{}, storage.ErrNotFound
	}
	if _, ok := s.petTypes[p.TypeID]; !ok {
		return owner.Pet{}, fmt.Errorf("pet type %d: %w", p.TypeID, storage.ErrNotFound)
	}
	s.pets[p.ID] = p
	return p, nil
}

func (s *Store) GetPet(_ context.Context, id int64) (owner.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pets[id]
	if !ok {
		return owner.Pet{}, storage.ErrNotFound
	}
	return p, nil
}

// VisitStore implementation --------------------------------------------------

func (s *Store) CreateVisit(_ context.Context, v owner.Visit) (owner.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pets[v.PetID]; !ok {
		return owner.Visit{}, fmt.Errorf("pet %d: %w", v.PetID, storage.ErrNotFound)
	}
	if v.ID == 0 {
		v.ID = s.nextVisitID
	} else if _, exists := s.visits[v.ID]; exists {
		return owner.Visit{}, fmt.Errorf("visit %d already exists", v.ID)
	}
	if v.ID >= s.nextVisitID {
		s.nextVisitID = v.ID + 1
	}
	s.visits[v.ID] = v
	return v, nil
}

func (s *Store) ListVisits(_ context.Context, petID int64) ([]owner.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.visitsOfLocked(petID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// VetStore implementation ----------------------------------------------------

func (s *Store) CountVets(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.vets), nil
}

func (s *Store) ListVetIDs(_ context.Context, limit, offset int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedVetIDsLocked()
	if offset >= len(ids) {
		return []int64{}, nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]int64(nil), ids[offset:end]...), nil
}

func (s *Store) VetRows(_ context.Context, ids []int64) ([]vet.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ids == nil {
		ids = s.sortedVetIDsLocked()
	} else {
		ids = append([]int64(nil), ids...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	var rows []vet.Row
	for _, id := range ids {
		v, ok := s.vets[id]
		if !ok {
			continue
		}
		base := vet.Row{VetID: v.ID, FirstName: v.FirstName, LastName: v.LastName}

		specs := make([]vet.Specialty, 0, len(s.vetSpecialties[id]))
		for _, sid := range s.vetSpecialties[id] {
			if sp, ok := s.specialties[sid]; ok {
				specs = append(specs, sp)
			}
		}
		if len(specs) == 0 {
			rows = append(rows, base)
			continue
		}
		sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
		for _, sp := range specs {
			row := base
			row.SpecialtyID = sql.NullInt64{Int64: sp.ID, Valid: true}
			row.SpecialtyName = sql.NullString{String: sp.Name, Valid: true}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Store) sortedVetIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.vets))
	for id := range s.vets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reference data -------------------------------------------------------------

// AddPetType registers a pet type.
func (s *Store) AddPetType(t owner.PetType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.petTypes[t.ID] = t
}

// AddVet registers a vet together with the ids of its specialties.
func (s *Store) AddVet(v vet.Vet, specialtyIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vets[v.ID] = v
	s.vetSpecialties[v.ID] = append([]int64(nil), specialtyIDs...)
}

// AddSpecialty registers a specialty.
func (s *Store) AddSpecialty(sp vet.Specialty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specialties[sp.ID] = sp
}

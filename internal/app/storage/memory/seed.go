package memory

import (
	"time"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
)

// NewSeeded returns a store preloaded with the sample clinic data that the
// SQL migrations also insert.
func NewSeeded() *Store {
	s := New()
	Seed(s)
	return s
}

// Seed loads the sample clinic data into s.
func Seed(s *Store) {
	for _, sp := range []vet.Specialty{
		{ID: 1, Name: "radiology"},
		{ID: 2, Name: "surgery"},
		{ID: 3, Name: "dentistry"},
	} {
		s.AddSpecialty(sp)
	}

	s.AddVet(vet.Vet{ID: 1, FirstName: "James", LastName: "Carter"})
	s.AddVet(vet.Vet{ID: 2, FirstName: "Helen", LastName: "Leary"}, 1)
	s.AddVet(vet.Vet{ID: 3, FirstName: "Linda", LastName: "Douglas"}, 2, 3)
	s.AddVet(vet.Vet{ID: 4, FirstName: "Rafael", LastName: "Ortega"}, 2)
	s.AddVet(vet.Vet{ID: 5, FirstName: "Henry", LastName: "Stevens"}, 1)
	s.AddVet(vet.Vet{ID: 6, FirstName: "Sharon", LastName: "Jenkins"})

	for _, t := range []owner.PetType{
		{ID: 1, Name: "cat"},
		{ID: 2, Name: "dog"},
		{ID: 3, Name: "lizard"},
		{ID: 4, Name: "snake"},
		{ID: 5, Name: "bird"},
		{ID: 6, Name: "hamster"},
	} {
		s.AddPetType(t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range []owner.Owner{
		{ID: 1, FirstName: "George", LastName: "Franklin", Address: "110 W. Liberty St.", City: "Madison", Telephone: "6085551023"},
		{ID: 2, FirstName: "Betty", LastName: "Davis", Address: "638 Cardinal Ave.", City: "Sun Prairie", Telephone: "6085551749"},
		{ID: 3, FirstName: "Eduardo", LastName: "Rodriquez", Address: "2693 Commerce St.", City: "McFarland", Telephone: "6085558763"},
		{ID: 4, FirstName: "Harold", LastName: "Davis", Address: "563 Friendly St.", City: "Windsor", Telephone: "6085553198"},
		{ID: 5, FirstName: "Peter", LastName: "McTavish", Address: "2387 S. Fair Way", City: "Madison", Telephone: "6085552765"},
		{ID: 6, FirstName: "Jean", LastName: "Coleman", Address: "105 N. Lake St.", City: "Monona", Telephone: "6085552654"},
		{ID: 7, FirstName: "Jeff", LastName: "Black", Address: "1450 Oak Blvd.", City: "Monona", Telephone: "6085555387"},
		{ID: 8, FirstName: "Maria", LastName: "Escobito", Address: "345 Maple St.", City: "Madison", Telephone: "6085557683"},
		{ID: 9, FirstName: "David", LastName: "Schroeder", Address: "2749 Blackhawk Trail", City: "Madison", Telephone: "6085559435"},
		{ID: 10, FirstName: "Carlos", LastName: "Estaban", Address: "2335 Independence La.", City: "Waunakee", Telephone: "6085555487"},
	} {
		s.owners[o.ID] = o
	}
	s.nextOwnerID = 11

	for _, p := range []owner.Pet{
		{ID: 1, Name: "Leo", BirthDate: date("2010-09-07"), TypeID: 1, OwnerID: 1},
		{ID: 2, Name: "Basil", BirthDate: date("2012-08-06"), TypeID: 6, OwnerID: 2},
		{ID: 3, Name: "Rosy", BirthDate: date("2011-04-17"), TypeID: 2, OwnerID: 3},
		{ID: 4, Name: "Jewel", BirthDate: date("2010-03-07"), TypeID: 2, OwnerID: 3},
		{ID: 5, Name: "Iggy", BirthDate: date("2010-11-30"), TypeID: 3, OwnerID: 4},
		{ID: 6, Name: "George", BirthDate: date("2010-01-20"), TypeID: 4, OwnerID: 5},
		{ID: 7, Name: "Samantha", BirthDate: date("2012-09-04"), TypeID: 1, OwnerID: 6},
		{ID: 8, Name: "Max", BirthDate: date("2012-09-04"), TypeID: 1, OwnerID: 6},
		{ID: 9, Name: "Lucky", BirthDate: date("2011-08-06"), TypeID: 5, OwnerID: 7},
		{ID: 10, Name: "Mulligan", BirthDate: date("2007-02-24"), TypeID: 2, OwnerID: 8},
		{ID: 11, Name: "Freddy", BirthDate: date("2010-03-09"), TypeID: 5, OwnerID: 9},
		{ID: 12, Name: "Lucky", BirthDate: date("2010-06-24"), TypeID: 2, OwnerID: 10},
		{ID: 13, Name: "Sly", BirthDate: date("2012-06-08"), TypeID: 1, OwnerID: 10},
	} {
		s.pets[p.ID] = p
	}
	s.nextPetID = 14

	for _, v := range []owner.Visit{
		{ID: 1, PetID: 7, Date: date("2013-01-01"), Description: "rabies shot"},
		{ID: 2, PetID: 8, Date: date("2013-01-02"), Description: "rabies shot"},
		{ID: 3, PetID: 8, Date: date("2013-01-03"), Description: "neutered"},
		{ID: 4, PetID: 7, Date: date("2013-01-04"), Description: "spayed"},
	} {
		s.visits[v.ID] = v
	}
	s.nextVisitID = 5
}

func date(value string) time.Time {
	t, err := time.Parse(owner.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

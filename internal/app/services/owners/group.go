package owners

import (
	"sort"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
)

// GroupDetailRows folds flat owner/pet/type/visit join rows into one tree per
// owner. The first row seen for an owner or pet supplies its fields; later
// duplicates are ignored. Rows with a null pet or visit id contribute nothing
// at that level. Pets are ordered by name and visits by date, both with id as
// tie-break; owners come out in ascending id order.
func GroupDetailRows(rows []owner.DetailRow) []owner.Details {
	type petAcc struct {
		details owner.PetDetails
		visits  map[int64]bool
	}
	type ownerAcc struct {
		details owner.Details
		petIdx  map[int64]*petAcc
		pets    []*petAcc
	}

	byOwner := make(map[int64]*ownerAcc)
	var ownerIDs []int64

	for _, row := range rows {
		acc, ok := byOwner[row.OwnerID]
		if !ok {
			acc = &ownerAcc{
				details: owner.Details{Owner: row.Owner(), Pets: []owner.PetDetails{}},
				petIdx:  make(map[int64]*petAcc),
			}
			byOwner[row.OwnerID] = acc
			ownerIDs = append(ownerIDs, row.OwnerID)
		}

		if !row.PetID.Valid {
			continue
		}
		pet, ok := acc.petIdx[row.PetID.Int64]
		if !ok {
			pet = &petAcc{
				details: owner.PetDetails{
					Pet: owner.Pet{
						ID:        row.PetID.Int64,
						Name:      row.PetName.String,
						BirthDate: row.BirthDate.Time,
						TypeID:    row.TypeID.Int64,
						OwnerID:   row.OwnerID,
					},
					Type:   owner.PetType{ID: row.TypeID.Int64, Name: row.TypeName.String},
					Visits: []owner.Visit{},
				},
				visits: make(map[int64]bool),
			}
			acc.petIdx[row.PetID.Int64] = pet
			acc.pets = append(acc.pets, pet)
		}

		if !row.VisitID.Valid || pet.visits[row.VisitID.Int64] {
			continue
		}
		pet.visits[row.VisitID.Int64] = true
		pet.details.Visits = append(pet.details.Visits, owner.Visit{
			ID:          row.VisitID.Int64,
			PetID:       row.PetID.Int64,
			Date:        row.VisitDate.Time,
			Description: row.VisitDescription.String,
		})
	}

	sort.Slice(ownerIDs, func(i, j int) bool { return ownerIDs[i] < ownerIDs[j] })

	out := make([]owner.Details, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		acc := byOwner[id]
		for _, pet := range acc.pets {
			SortVisits(pet.details.Visits)
			acc.details.Pets = append(acc.details.Pets, pet.details)
		}
		SortPets(acc.details.Pets)
		out = append(out, acc.details)
	}
	return out
}

// SortPets orders pets by name, then id.
func SortPets(pets []owner.PetDetails) {
	sort.SliceStable(pets, func(i, j int) bool {
		if pets[i].Name != pets[j].Name {
			return pets[i].Name < pets[j].Name
		}
		return pets[i].ID < pets[j].ID
	})
}

// SortVisits orders visits by date, then id.
func SortVisits(visits []owner.Visit) {
	sort.SliceStable(visits, func(i, j int) bool {
		if !visits[i].Date.Equal(visits[j].Date) {
			return visits[i].Date.Before(visits[j].Date)
		}
		return visits[i].ID < visits[j].ID
	})
}

// Package pets registers and edits an owner's pets.
package pets

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/metrics"
	"github.com/R3E-Network/petclinic/internal/app/services/owners"
	"github.com/R3E-Network/petclinic/internal/app/storage"
	"github.com/R3E-Network/petclinic/internal/app/validation"
	"github.com/R3E-Network/petclinic/internal/errors"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// Form is the pet create/edit form. Type carries the pet type name.
type Form struct {
	Name      string `form:"name" validate:"notblank"`
	BirthDate string `form:"birthDate" validate:"notblank,isodate,notfuture"`
	Type      string `form:"type" validate:"notblank"`
}

// Service manages pets.
type Service struct {
	owners storage.OwnerStore
	store  storage.PetStore
	log    *logger.Logger
}

// New constructs a pet service.
func New(ownerStore storage.OwnerStore, store storage.PetStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("pets")
	}
	return &Service{owners: ownerStore, store: store, log: log}
}

// Types lists every pet type ordered by name.
func (s *Service) Types(ctx context.Context) ([]owner.PetType, error) {
	types, err := s.store.ListPetTypes(ctx)
	if err != nil {
		return nil, s.storeError("list_pet_types", err)
	}
	return types, nil
}

// Owner returns the owner together with its pets.
func (s *Service) Owner(ctx context.Context, ownerID int64) (owner.Details, error) {
	rows, err := s.owners.OwnerDetailRows(ctx, ownerID)
	if err != nil {
		return owner.Details{}, s.storeError("owner_details", err)
	}
	grouped := owners.GroupDetailRows(rows)
	if len(grouped) == 0 {
		return owner.Details{}, errors.NotFound("owner", ownerID)
	}
	return grouped[0], nil
}

// FormFor pre-fills the edit form for one of the owner's pets.
func (s *Service) FormFor(ctx context.Context, ownerID, petID int64) (Form, error) {
	details, err := s.Owner(ctx, ownerID)
	if err != nil {
		return Form{}, err
	}
	pet, ok := details.Pet(petID)
	if !ok {
		return Form{}, errors.NotFound("pet", petID)
	}
	return Form{
		Name:      pet.Name,
		BirthDate: pet.BirthDate.Format(owner.DateLayout),
		Type:      pet.Type.Name,
	}, nil
}

// Create adds a pet to the owner. Validation failures, including a
// duplicate name or unknown type, are returned as *validation.Errors.
func (s *Service) Create(ctx context.Context, ownerID int64, form Form) (owner.Pet, error) {
	details, err := s.Owner(ctx, ownerID)
	if err != nil {
		return owner.Pet{}, err
	}

	pet, err := s.check(ctx, details, 0, form)
	if err != nil {
		return owner.Pet{}, err
	}
	pet.OwnerID = ownerID

	created, err := s.store.CreatePet(ctx, pet)
	if err != nil {
		return owner.Pet{}, s.storeError("create_pet", err)
	}
	metrics.RecordWrite("pet", "create")
	s.log.WithField("owner_id", ownerID).
		WithField("pet_id", created.ID).
		Info("pet registered")
	return created, nil
}

// Update edits one of the owner's pets.
func (s *Service) Update(ctx context.Context, ownerID, petID int64, form Form) (owner.Pet, error) {
	details, err := s.Owner(ctx, ownerID)
	if err != nil {
		return owner.Pet{}, err
	}
	if _, ok := details.Pet(petID); !ok {
		return owner.Pet{}, errors.NotFound("pet", petID)
	}

	pet, err := s.check(ctx, details, petID, form)
	if err != nil {
		return owner.Pet{}, err
	}
	pet.ID = petID
	pet.OwnerID = ownerID

	updated, err := s.store.UpdatePet(ctx, pet)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return owner.Pet{}, errors.NotFound("pet", petID)
		}
		return owner.Pet{}, s.storeError("update_pet", err)
	}
	metrics.RecordWrite("pet", "update")
	s.log.WithField("owner_id", ownerID).
		WithField("pet_id", petID).
		Info("pet updated")
	return updated, nil
}

// check validates form against the stored pet types and the owner's other
// pets and converts it into a Pet.
func (s *Service) check(ctx context.Context, details owner.Details, petID int64, form Form) (owner.Pet, error) {
	errs := validation.Validate(form)

	types, err := s.Types(ctx)
	if err != nil {
		return owner.Pet{}, err
	}
	petType, known := findType(types, form.Type)
	if !errs.Has("type") && !known {
		errs.Add("type", validation.KeyPetType)
	}

	name := strings.TrimSpace(form.Name)
	if name != "" && nameTaken(details, petID, name) {
		errs.Add("name", validation.KeyDuplicate)
	}

	if !errs.Empty() {
		metrics.RecordValidationFailure("pet")
		return owner.Pet{}, errs
	}

	birth, _ := validation.ParseDate(form.BirthDate)
	return owner.Pet{Name: name, BirthDate: birth, TypeID: petType.ID}, nil
}

func findType(types []owner.PetType, name string) (owner.PetType, bool) {
	name = strings.TrimSpace(name)
	for _, t := range types {
		if t.Name == name {
			return t, true
		}
	}
	return owner.PetType{}, false
}

// nameTaken compares case-insensitively and ignores the pet being edited.
func nameTaken(details owner.Details, petID int64, name string) bool {
	for _, p := range details.Pets {
		if p.ID != petID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (s *Service) storeError(op string, err error) error {
	metrics.RecordStoreError(op)
	s.log.WithError(err).WithField("operation", op).Error("store call failed")
	return errors.Database(err)
}

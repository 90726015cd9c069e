// Package visits books visits for pets.
package visits

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

// Form is the new-visit form.
type Form struct {
	Date        string `form:"date" validate:"notblank,isodate,notfuture"`
	Description string `form:"description" validate:"notblank"`
}

// Service books visits.
type Service struct {
	owners storage.OwnerStore
	pets   storage.PetStore
	store  storage.VisitStore
	log    *logger.Logger
}

// New constructs a visit service.
func New(ownerStore storage.OwnerStore, petStore storage.PetStore, store storage.VisitStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("visits")
	}
	return &Service{owners: ownerStore, pets: petStore, store: store, log: log}
}

// Target loads the owner and the pet a visit is being booked for, together
// with the pet's earlier visits.
func (s *Service) Target(ctx context.Context, ownerID, petID int64) (owner.Owner, owner.PetDetails, error) {
	o, err := s.owners.GetOwner(ctx, ownerID)
	if err != nil {
		return owner.Owner{}, owner.PetDetails{}, s.lookupError("get_owner", "owner", ownerID, err)
	}
	p, err := s.pets.GetPet(ctx, petID)
	if err != nil {
		return owner.Owner{}, owner.PetDetails{}, s.lookupError("get_pet", "pet", petID, err)
	}
	if p.OwnerID != ownerID {
		return owner.Owner{}, owner.PetDetails{}, errors.NotFound("pet", petID)
	}

	types, err := s.pets.ListPetTypes(ctx)
	if err != nil {
		return owner.Owner{}, owner.PetDetails{}, s.storeError("list_pet_types", err)
	}
	history, err := s.store.ListVisits(ctx, petID)
	if err != nil {
		return owner.Owner{}, owner.PetDetails{}, s.storeError("list_visits", err)
	}
	owners.SortVisits(history)

	details := owner.PetDetails{Pet: p, Visits: history}
	for _, t := range types {
		if t.ID == p.TypeID {
			details.Type = t
			break
		}
	}
	return o, details, nil
}

// Book records a visit for one of the owner's pets. Validation failures are
// returned as *validation.Errors.
func (s *Service) Book(ctx context.Context, ownerID, petID int64, form Form) (owner.Visit, error) {
	if _, _, err := s.Target(ctx, ownerID, petID); err != nil {
		return owner.Visit{}, err
	}

	if errs := validation.Validate(form); !errs.Empty() {
		metrics.RecordValidationFailure("visit")
		return owner.Visit{}, errs
	}

	date, _ := validation.ParseDate(form.Date)
	created, err := s.store.CreateVisit(ctx, owner.Visit{
		PetID:       petID,
		Date:        date,
		Description: strings.TrimSpace(form.Description),
	})
	if err != nil {
		return owner.Visit{}, s.storeError("create_visit", err)
	}
	metrics.RecordWrite("visit", "create")
	s.log.WithField("owner_id", ownerID).
		WithField("pet_id", petID).
		WithField("visit_id", created.ID).
		Info("visit booked")
	return created, nil
}

func (s *Service) lookupError(op, resource string, id int64, err error) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound(resource, id)
	}
	return s.storeError(op, err)
}

func (s *Service) storeError(op string, err error) error {
	metrics.RecordStoreError(op)
	s.log.WithError(err).WithField("operation", op).Error("store call failed")
	return errors.Database(err)
}

// Package owners implements owner lookup, search and maintenance.
package owners

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/metrics"
	"github.com/R3E-Network/petclinic/internal/app/pagination"
	"github.com/R3E-Network/petclinic/internal/app/storage"
	"github.com/R3E-Network/petclinic/internal/app/validation"
	"github.com/R3E-Network/petclinic/internal/errors"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// Form is the owner create/edit form.
type Form struct {
	FirstName string `form:"firstName" validate:"notblank"`
	LastName  string `form:"lastName" validate:"notblank"`
	Address   string `form:"address" validate:"notblank"`
	City      string `form:"city" validate:"notblank"`
	Telephone string `form:"telephone" validate:"notblank,telephone"`
}

// FormFor pre-fills the edit form from o.
func FormFor(o owner.Owner) Form {
	return Form{FirstName: o.FirstName, LastName: o.LastName, Address: o.Address, City: o.City, Telephone: o.Telephone}
}

func (f Form) owner(id int64) owner.Owner {
	return owner.Owner{
		ID:        id,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Address:   strings.TrimSpace(f.Address),
		City:      strings.TrimSpace(f.City),
		Telephone: strings.TrimSpace(f.Telephone),
	}
}

// Listing is one page of owner search results.
type Listing struct {
	Owners   []owner.Summary
	Page     pagination.Page
	LastName string
}

// Service manages owners.
type Service struct {
	store    storage.OwnerStore
	pageSize int
	log      *logger.Logger
}

// New constructs an owner service. pageSize <= 0 selects the default page
// size.
func New(store storage.OwnerStore, pageSize int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("owners")
	}
	if pageSize <= 0 {
		pageSize = pagination.DefaultSize
	}
	return &Service{store: store, pageSize: pageSize, log: log}
}

// Get returns a single owner.
func (s *Service) Get(ctx context.Context, id int64) (owner.Owner, error) {
	o, err := s.store.GetOwner(ctx, id)
	if err != nil {
		return owner.Owner{}, s.storeError("get_owner", "owner", id, err)
	}
	return o, nil
}

// Details returns the owner with pets, pet types and visits.
func (s *Service) Details(ctx context.Context, id int64) (owner.Details, error) {
	rows, err := s.store.OwnerDetailRows(ctx, id)
	if err != nil {
		return owner.Details{}, s.storeError("owner_details", "owner", id, err)
	}
	grouped := GroupDetailRows(rows)
	if len(grouped) == 0 {
		return owner.Details{}, errors.NotFound("owner", id)
	}
	return grouped[0], nil
}

// Find searches owners by last-name prefix. The page is clamped into range
// and the list query is skipped when nothing matches.
func (s *Service) Find(ctx context.Context, lastName string, page, size int) (Listing, error) {
	lastName = strings.TrimSpace(lastName)
	if size <= 0 {
		size = s.pageSize
	}
	if size > pagination.MaxSize {
		size = pagination.MaxSize
	}

	total, err := s.store.CountOwners(ctx, lastName)
	if err != nil {
		return Listing{}, s.storeError("count_owners", "", 0, err)
	}

	listing := Listing{LastName: lastName, Page: pagination.New(page, total, size), Owners: []owner.Summary{}}
	if total == 0 {
		return listing, nil
	}

	listing.Owners, err = s.store.ListOwnerSummaries(ctx, lastName, listing.Page.Limit(), listing.Page.Offset())
	if err != nil {
		return Listing{}, s.storeError("list_owners", "", 0, err)
	}
	return listing, nil
}

// Create validates the form and stores a new owner. Validation failures are
// returned as *validation.Errors.
func (s *Service) Create(ctx context.Context, form Form) (owner.Owner, error) {
	if errs := validation.Validate(form); !errs.Empty() {
		metrics.RecordValidationFailure("owner")
		return owner.Owner{}, errs
	}

	created, err := s.store.CreateOwner(ctx, form.owner(0))
	if err != nil {
		return owner.Owner{}, s.storeError("create_owner", "", 0, err)
	}
	metrics.RecordWrite("owner", "create")
	s.log.WithField("owner_id", created.ID).
		WithField("last_name", created.LastName).
		Info("owner created")
	return created, nil
}

// Update validates the form and overwrites owner id. A missing owner is
// reported before any validation failure.
func (s *Service) Update(ctx context.Context, id int64, form Form) (owner.Owner, error) {
	if _, err := s.store.GetOwner(ctx, id); err != nil {
		return owner.Owner{}, s.storeError("get_owner", "owner", id, err)
	}
	if errs := validation.Validate(form); !errs.Empty() {
		metrics.RecordValidationFailure("owner")
		return owner.Owner{}, errs
	}

	updated, err := s.store.UpdateOwner(ctx, form.owner(id))
	if err != nil {
		return owner.Owner{}, s.storeError("update_owner", "owner", id, err)
	}
	metrics.RecordWrite("owner", "update")
	s.log.WithField("owner_id", id).Info("owner updated")
	return updated, nil
}

func (s *Service) storeError(op, resource string, id int64, err error) error {
	if resource != "" && stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound(resource, id)
	}
	metrics.RecordStoreError(op)
	s.log.WithError(err).WithField("operation", op).Error("store call failed")
	return errors.Database(err)
}

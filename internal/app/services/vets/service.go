// Package vets lists veterinarians with their specialties.
package vets

import (
	"context"
	"sort"

	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
	"github.com/R3E-Network/petclinic/internal/app/metrics"
	"github.com/R3E-Network/petclinic/internal/app/pagination"
	"github.com/R3E-Network/petclinic/internal/app/storage"
	"github.com/R3E-Network/petclinic/internal/errors"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// Listing is one page of vets.
type Listing struct {
	Vets []vet.WithSpecialties
	Page pagination.Page
}

// Service reads vets.
type Service struct {
	store    storage.VetStore
	pageSize int
	log      *logger.Logger
}

// New constructs a vet service.
func New(store storage.VetStore, pageSize int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("vets")
	}
	if pageSize <= 0 {
		pageSize = pagination.DefaultSize
	}
	return &Service{store: store, pageSize: pageSize, log: log}
}

// All returns every vet.
func (s *Service) All(ctx context.Context) ([]vet.WithSpecialties, error) {
	rows, err := s.store.VetRows(ctx, nil)
	if err != nil {
		return nil, s.storeError("vet_rows", err)
	}
	return GroupRows(rows), nil
}

// Page returns one page of vets ordered by id. Ids are paged first so a vet
// with several specialties is never split across pages.
func (s *Service) Page(ctx context.Context, page, size int) (Listing, error) {
	if size <= 0 {
		size = s.pageSize
	}

	total, err := s.store.CountVets(ctx)
	if err != nil {
		return Listing{}, s.storeError("count_vets", err)
	}
	listing := Listing{Page: pagination.New(page, total, size), Vets: []vet.WithSpecialties{}}
	if total == 0 {
		return listing, nil
	}

	ids, err := s.store.ListVetIDs(ctx, listing.Page.Limit(), listing.Page.Offset())
	if err != nil {
		return Listing{}, s.storeError("list_vet_ids", err)
	}
	if len(ids) == 0 {
		return listing, nil
	}
	rows, err := s.store.VetRows(ctx, ids)
	if err != nil {
		return Listing{}, s.storeError("vet_rows", err)
	}
	listing.Vets = GroupRows(rows)
	return listing, nil
}

// GroupRows folds vet/specialty join rows into one entry per vet. The first
// row of a vet supplies its name; duplicate specialties are dropped and null
// specialty rows add nothing. Specialties are sorted by name then id, vets by
// id.
func GroupRows(rows []vet.Row) []vet.WithSpecialties {
	type acc struct {
		vet  vet.WithSpecialties
		seen map[int64]bool
	}

	byID := make(map[int64]*acc)
	var ids []int64
	for _, row := range rows {
		a, ok := byID[row.VetID]
		if !ok {
			a = &acc{
				vet: vet.WithSpecialties{
					Vet:         vet.Vet{ID: row.VetID, FirstName: row.FirstName, LastName: row.LastName},
					Specialties: []vet.Specialty{},
				},
				seen: make(map[int64]bool),
			}
			byID[row.VetID] = a
			ids = append(ids, row.VetID)
		}
		if !row.SpecialtyID.Valid || a.seen[row.SpecialtyID.Int64] {
			continue
		}
		a.seen[row.SpecialtyID.Int64] = true
		a.vet.Specialties = append(a.vet.Specialties, vet.Specialty{ID: row.SpecialtyID.Int64, Name: row.SpecialtyName.String})
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]vet.WithSpecialties, 0, len(ids))
	for _, id := range ids {
		v := byID[id].vet
		sort.SliceStable(v.Specialties, func(i, j int) bool {
			if v.Specialties[i].Name != v.Specialties[j].Name {
				return v.Specialties[i].Name < v.Specialties[j].Name
			}
			return v.Specialties[i].ID < v.Specialties[j].ID
		})
		out = append(out, v)
	}
	return out
}

func (s *Service) storeError(op string, err error) error {
	metrics.RecordStoreError(op)
	s.log.WithError(err).WithField("operation", op).Error("store call failed")
	return errors.Database(err)
}

package vets

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
	"github.com/R3E-Network/petclinic/internal/app/storage/memory"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

func specialtyRow(vetID int64, first string, specID int64, name string) vet.Row {
	r := vet.Row{VetID: vetID, FirstName: first, LastName: "Doe"}
	if specID != 0 {
		r.SpecialtyID = sql.NullInt64{Int64: specID, Valid: true}
		r.SpecialtyName = sql.NullString{String: name, Valid: true}
	}
	return r
}

func TestGroupRows(t *testing.T) {
	rows := []vet.Row{
		specialtyRow(3, "Linda", 2, "surgery"),
		specialtyRow(1, "James", 0, ""),
		specialtyRow(3, "Lindy", 3, "dentistry"),
		specialtyRow(3, "Linda", 2, "surgery"),
	}

	grouped := GroupRows(rows)
	require.Len(t, grouped, 2)

	assert.Equal(t, int64(1), grouped[0].ID)
	assert.Empty(t, grouped[0].Specialties)
	assert.Equal(t, "none", grouped[0].SpecialtyNames())

	assert.Equal(t, "Linda", grouped[1].FirstName, "first row wins")
	assert.Equal(t, "dentistry, surgery", grouped[1].SpecialtyNames())
}

func TestAll(t *testing.T) {
	svc := New(memory.NewSeeded(), 0, logger.Discard())

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "Douglas", all[2].LastName)
	assert.Len(t, all[2].Specialties, 2)
}

func TestPage(t *testing.T) {
	svc := New(memory.NewSeeded(), 5, logger.Discard())
	ctx := context.Background()

	first, err := svc.Page(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Page.TotalPages)
	assert.Len(t, first.Vets, 5)
	assert.True(t, first.Page.HasNext)

	second, err := svc.Page(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, second.Vets, 1)
	assert.Equal(t, "Jenkins", second.Vets[0].LastName)
	assert.False(t, second.Page.HasNext)

	big, err := svc.Page(ctx, 1, 50)
	require.NoError(t, err)
	assert.Len(t, big.Vets, 6)
}

func TestPageWithoutVets(t *testing.T) {
	svc := New(memory.New(), 5, logger.Discard())

	listing, err := svc.Page(context.Background(), 4, 0)
	require.NoError(t, err)
	assert.Empty(t, listing.Vets)
	assert.Equal(t, 1, listing.Page.Current)
}

package sqlstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/storage"
)

func newMockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(sqlx.NewDb(db, driver)), mock
}

var ownerColumns = []string{"id", "first_name", "last_name", "address", "city", "telephone"}

func TestCreateOwnerReturnsGeneratedID(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO owners (first_name, last_name, address, city, telephone)")).
		WithArgs("George", "Franklin", "110 W. Liberty St.", "Madison", "6085551023").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	created, err := store.CreateOwner(context.Background(), owner.Owner{
		FirstName: "George", LastName: "Franklin", Address: "110 W. Liberty St.", City: "Madison", Telephone: "6085551023",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
}

func TestUpdateOwnerMissingRow(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE owners")).
		WithArgs("a", "b", "c", "d", "0123456789", int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateOwner(context.Background(), owner.Owner{
		ID: 404, FirstName: "a", LastName: "b", Address: "c", City: "d", Telephone: "0123456789",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetOwner(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("FROM owners")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(ownerColumns).AddRow(1, "George", "Franklin", "addr", "Madison", "6085551023"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM owners")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(ownerColumns))

	got, err := store.GetOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Franklin", got.LastName)

	_, err = store.GetOwner(context.Background(), 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOwnerDetailRowsScansNullableColumns(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	birth := time.Date(2012, 9, 4, 0, 0, 0, 0, time.UTC)
	visit := time.Date(2013, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"owner_id", "first_name", "last_name", "address", "city", "telephone",
		"pet_id", "pet_name", "birth_date", "type_id", "type_name",
		"visit_id", "visit_date", "visit_description",
	}).
		AddRow(6, "Jean", "Coleman", "105 N. Lake St.", "Monona", "6085552654", 8, "Max", birth, 1, "cat", 2, visit, "rabies shot").
		AddRow(6, "Jean", "Coleman", "105 N. Lake St.", "Monona", "6085552654", 9, "Newbie", birth, 1, "cat", nil, nil, nil)

	mock.ExpectQuery(`LEFT JOIN pets p ON p.owner_id = o.id.*WHERE o.id = \$1`).
		WithArgs(int64(6)).
		WillReturnRows(rows)

	got, err := store.OwnerDetailRows(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Max", got[0].PetName.String)
	assert.True(t, got[0].VisitDate.Time.Equal(visit))
	assert.True(t, got[1].PetID.Valid)
	assert.False(t, got[1].VisitID.Valid)
	assert.Equal(t, "Coleman", got[1].Owner().LastName)
}

func TestOwnerSearchEscapesWildcards(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM owners o")).
		WithArgs(`50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := store.CountOwners(context.Background(), "50%")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListOwnerSummariesPerDialect(t *testing.T) {
	cases := []struct {
		driver    string
		aggregate string
		binds     string
	}{
		{driver: "postgres", aggregate: "string_agg(p.name, ', ' ORDER BY p.name)", binds: "LIMIT $2 OFFSET $3"},
		{driver: "pgx", aggregate: "string_agg(p.name, ', ' ORDER BY p.name)", binds: "LIMIT $2 OFFSET $3"},
		{driver: "sqlite", aggregate: "group_concat(name, ', ')", binds: "LIMIT ? OFFSET ?"},
	}
	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			store, mock := newMockStore(t, tc.driver)

			pattern := regexp.QuoteMeta(tc.aggregate) + `(.|\n)*` + regexp.QuoteMeta(tc.binds)
			mock.ExpectQuery(pattern).
				WithArgs("dav%", 5, 0).
				WillReturnRows(sqlmock.NewRows(append(ownerColumns, "pet_names")).
					AddRow(2, "Betty", "Davis", "638 Cardinal Ave.", "Sun Prairie", "6085551749", "Basil").
					AddRow(4, "Harold", "Davis", "563 Friendly St.", "Windsor", "6085553198", "Iggy"))

			list, err := store.ListOwnerSummaries(context.Background(), "dav", 5, 0)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "Basil", list[0].PetNames)
			assert.Equal(t, int64(4), list[1].ID)
		})
	}
}

func TestCreatePetFormatsBirthDate(t *testing.T) {
	store, mock := newMockStore(t, "sqlite")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO pets (name, birth_date, type_id, owner_id)")).
		WithArgs("Leo", "2010-09-07", int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(14))

	pet, err := store.CreatePet(context.Background(), owner.Pet{
		Name: "Leo", BirthDate: time.Date(2010, 9, 7, 0, 0, 0, 0, time.UTC), TypeID: 1, OwnerID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(14), pet.ID)
}

func TestVetRowsExpandsIDs(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE v.id IN ($1, $2) ORDER BY v.id, s.name")).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"vet_id", "first_name", "last_name", "specialty_id", "specialty_name"}).
			AddRow(3, "Linda", "Douglas", 3, "dentistry").
			AddRow(3, "Linda", "Douglas", 2, "surgery").
			AddRow(4, "Rafael", "Ortega", 2, "surgery"))

	rows, err := store.VetRows(context.Background(), []int64{3, 4})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "dentistry", rows[0].SpecialtyName.String)

	empty, err := store.VetRows(context.Background(), []int64{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestVetRowsAll(t *testing.T) {
	store, mock := newMockStore(t, "sqlite")

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN specialties s ON s.id = vs.specialty_id")).
		WillReturnRows(sqlmock.NewRows([]string{"vet_id", "first_name", "last_name", "specialty_id", "specialty_name"}).
			AddRow(1, "James", "Carter", nil, nil))

	rows, err := store.VetRows(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].SpecialtyID.Valid)
}

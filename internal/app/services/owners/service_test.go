package owners

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/storage/memory"
	"github.com/R3E-Network/petclinic/internal/app/validation"
	apperrors "github.com/R3E-Network/petclinic/internal/errors"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

func newService() *Service {
	return New(memory.NewSeeded(), 5, logger.Discard())
}

func TestServiceFind(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	all, err := svc.Find(ctx, "", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, all.Page.TotalCount)
	assert.Equal(t, 2, all.Page.TotalPages)
	assert.Len(t, all.Owners, 5)
	assert.Equal(t, "Black", all.Owners[0].LastName)

	last, err := svc.Find(ctx, "", 99, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Page.Current, "page clamped")
	assert.Len(t, last.Owners, 5)

	davis, err := svc.Find(ctx, " davis ", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "davis", davis.LastName)
	assert.Len(t, davis.Owners, 2)

	none, err := svc.Find(ctx, "Zzz", 3, 0)
	require.NoError(t, err)
	assert.True(t, none.Page.Empty())
	assert.Equal(t, 1, none.Page.Current)
	assert.Empty(t, none.Owners)
}

func TestServiceDetails(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	details, err := svc.Details(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Coleman", details.LastName)
	require.Len(t, details.Pets, 2)
	assert.Equal(t, "Max", details.Pets[0].Name)

	_, err = svc.Details(ctx, 404)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "Owner not found with id: 404. Please ensure the ID is correct and the owner exists in the database.", err.Error())
}

func TestServiceCreateAndUpdate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	form := Form{FirstName: "Ada", LastName: " Lovelace ", Address: "12 St James's Sq", City: "London", Telephone: "0123456789"}
	created, err := svc.Create(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, "Lovelace", created.LastName)

	form.LastName = "Lovelace"
	form.City = "Marylebone"
	_, err = svc.Update(ctx, created.ID, form)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marylebone", got.City)
	assert.Equal(t, form, FormFor(got))

	_, err = svc.Update(ctx, 404, form)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestServiceUpdateMissingOwnerBeforeValidation(t *testing.T) {
	svc := newService()

	_, err := svc.Update(context.Background(), 9999, Form{FirstName: "Ada"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	var verrs *validation.Errors
	assert.False(t, errors.As(err, &verrs))
}

func TestServiceCreateRejectsInvalidForm(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), Form{FirstName: "Ada", Telephone: "12-34"})
	require.Error(t, err)

	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"lastName", "address", "city", "telephone"}, verrs.Fields())
	assert.Equal(t, []string{validation.KeyTelephone}, verrs.Keys("telephone"))
}

type failingStore struct {
	*memory.Store
}

func (failingStore) CountOwners(context.Context, string) (int, error) {
	return 0, errors.New("connection reset")
}

func (failingStore) GetOwner(context.Context, int64) (owner.Owner, error) {
	return owner.Owner{}, errors.New("connection reset")
}

func TestServiceWrapsStoreFailures(t *testing.T) {
	svc := New(failingStore{memory.New()}, 0, logger.Discard())

	_, err := svc.Find(context.Background(), "", 1, 0)
	assert.True(t, apperrors.Is(err, apperrors.KindDatabase))
	assert.Contains(t, err.Error(), "Database error: connection reset")

	_, err = svc.Get(context.Background(), 1)
	assert.True(t, apperrors.Is(err, apperrors.KindDatabase))
}

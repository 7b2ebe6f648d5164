package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
)

func TestCustomerService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.customers.Create(ctx, CustomerInput{Email: "kaputt"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"name": "required", "email": "invalid_email"}, verr.Fields)

	zoe := f.customer(t, "Zoe Zimmermann")
	anna := f.customer(t, "Anna Albers")

	list, err := f.customers.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"Anna Albers", "Zoe Zimmermann"}, []string{list[0].Name, list[1].Name})

	list, err = f.customers.List(ctx, "zimmer")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, zoe.ID, list[0].ID)

	got, err := f.customers.Update(ctx, anna.ID, CustomerInput{Name: "Anna Albers-Kunz", Phone: "0171 555"})
	require.NoError(t, err)
	assert.Equal(t, "Anna Albers-Kunz", got.Name)
	assert.Equal(t, "0171 555", got.Phone)
	assert.Empty(t, got.Email)

	_, err = f.customers.Update(ctx, 999, CustomerInput{Name: "x"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestCustomerDelete_Guards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer(t, "Mit Auftrag")
	v := f.vehicle(t, &c.ID)
	est, err := f.estimates.Create(ctx, EstimateInput{CustomerID: c.ID, TotalAmount: 10})
	require.NoError(t, err)

	err = f.customers.Delete(ctx, c.ID)
	assert.True(t, apperr.IsConflict(err), "got %v", err)

	require.NoError(t, f.estimates.Delete(ctx, est.ID))
	require.NoError(t, f.customers.Delete(ctx, c.ID))

	veh, err := f.vehicles.Get(ctx, v.ID)
	require.NoError(t, err, "vehicles survive their owner")
	assert.Nil(t, veh.CustomerID)
	assert.Empty(t, veh.CustomerName)

	assert.True(t, apperr.IsNotFound(f.customers.Delete(ctx, c.ID)))
}

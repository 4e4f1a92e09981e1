package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/vente_shop/services/cart/internal/models"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/repo"
)

var (
	alice = models.Owner{UserID: 7}
	guest = models.Owner{SessionID: "0b6f8f5e-5d7e-4c0b-9f59-2f1f4d2a9c11"}
)

func TestAdd(t *testing.T) {
	t.Parallel()

	svc := &CartService{Store: repo.NewMemoryStore()}
	ctx := context.Background()

	line, err := svc.Add(ctx, alice, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	line, err = svc.Add(ctx, alice, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity, "quantities add up")

	line, err = svc.Add(ctx, alice, models.Line{Type: models.TypeEquipment, ID: 4, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, line.Days, "equipment defaults to one day")

	line, err = svc.Add(ctx, alice, models.Line{Type: models.TypeEquipment, ID: 4, Quantity: 1, Days: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 3, line.Days, "days are replaced")

	cart, err := svc.GetCart(ctx, alice)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, models.TypeEquipment, cart.Lines[0].Type)
	assert.Equal(t, 7, cart.TotalItems)
}

func TestAdd_Rejects(t *testing.T) {
	t.Parallel()

	svc := &CartService{Store: repo.NewMemoryStore()}
	ctx := context.Background()

	tests := []struct {
		name  string
		owner models.Owner
		line  models.Line
		want  error
	}{
		{name: "unknown type", owner: alice, line: models.Line{Type: "gift", ID: 1, Quantity: 1}, want: ErrValidation},
		{name: "zero quantity", owner: alice, line: models.Line{Type: models.TypeProduct, ID: 1}, want: ErrValidation},
		{name: "missing id", owner: alice, line: models.Line{Type: models.TypeProduct, Quantity: 1}, want: ErrValidation},
		{name: "days on product", owner: alice, line: models.Line{Type: models.TypeProduct, ID: 1, Quantity: 1, Days: 2}, want: ErrValidation},
		{name: "negative days", owner: alice, line: models.Line{Type: models.TypeEquipment, ID: 1, Quantity: 1, Days: -1}, want: ErrValidation},
		{name: "too many", owner: alice, line: models.Line{Type: models.TypeProduct, ID: 1, Quantity: maxQuantity + 1}, want: ErrValidation},
		{name: "anonymous rental", owner: guest, line: models.Line{Type: models.TypeEquipment, ID: 1, Quantity: 1}, want: ErrUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Add(ctx, tt.owner, tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateRemoveClear(t *testing.T) {
	t.Parallel()

	svc := &CartService{Store: repo.NewMemoryStore()}
	ctx := context.Background()

	_, err := svc.Update(ctx, guest, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, guest, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, models.Line{Type: models.TypeProduct, ID: 2, Quantity: 1})
	require.NoError(t, err)

	line, err := svc.Update(ctx, guest, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	require.NoError(t, svc.Remove(ctx, guest, models.TypeProduct, 2))
	assert.ErrorIs(t, svc.Remove(ctx, guest, models.TypeProduct, 2), ErrNotFound)

	cart, err := svc.GetCart(ctx, guest)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.TotalItems)

	require.NoError(t, svc.Clear(ctx, guest))
	cart, err = svc.GetCart(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	store := repo.NewMemoryStore()
	svc := &CartService{Store: store}
	ctx := context.Background()

	_, err := svc.Add(ctx, alice, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Add(ctx, alice, models.Line{Type: models.TypeEquipment, ID: 9, Quantity: 1, Days: 2})
	require.NoError(t, err)

	_, err = svc.Add(ctx, guest, models.Line{Type: models.TypeProduct, ID: 1, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, models.Line{Type: models.TypeProduct, ID: 5, Quantity: 1})
	require.NoError(t, err)
	// Session carts can hold rentals made before a token expired.
	require.NoError(t, store.Update(ctx, guest.Key(), models.Field(models.TypeEquipment, 9), func(*models.Line) (*models.Line, error) {
		return &models.Line{Type: models.TypeEquipment, ID: 9, Quantity: 1, Days: 5}, nil
	}))

	cart, err := svc.Merge(ctx, alice.UserID, guest.SessionID)
	require.NoError(t, err)

	byField := map[string]models.Line{}
	for _, l := range cart.Lines {
		byField[l.Field()] = l
	}
	assert.Equal(t, 5, byField["product:1"].Quantity)
	assert.Equal(t, 1, byField["product:5"].Quantity)
	assert.Equal(t, 2, byField["equipment:9"].Quantity)
	assert.Equal(t, 5, byField["equipment:9"].Days, "longer rental wins")

	left, err := svc.GetCart(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, left.Lines, "session cart is removed")

	_, err = svc.Merge(ctx, 0, guest.SessionID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

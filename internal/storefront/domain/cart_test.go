package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "basketstore/pkg/errors"
	"basketstore/pkg/money"
)

func testProduct(name string, price float64) *Product {
	return &Product{
		ID:        uuid.New(),
		Name:      name,
		UnitPrice: money.MustFromFloat(price),
		OnHand:    10,
		Active:    true,
	}
}

func TestCart_AddItem(t *testing.T) {
	cart := NewCart(uuid.New())
	p := testProduct("Arroz 5kg", 10.00)

	require.NoError(t, cart.AddItem(p, 2))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Arroz 5kg", cart.Items[0].ProductName)
	assert.True(t, cart.Total().Equal(money.MustFromFloat(20.00)))
}

func TestCart_AddItem_MergesExistingLine(t *testing.T) {
	cart := NewCart(uuid.New())
	p := testProduct("Feijão 1kg", 8.50)

	require.NoError(t, cart.AddItem(p, 1))
	require.NoError(t, cart.AddItem(p, 2))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCart_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	cart := NewCart(uuid.New())

	err := cart.AddItem(testProduct("Leite", 4.99), 0)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestCart_AddItem_RejectsInactiveProduct(t *testing.T) {
	cart := NewCart(uuid.New())
	p := testProduct("Descontinuado", 1.00)
	p.Active = false

	err := cart.AddItem(p, 1)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestCart_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart(uuid.New())
	p := testProduct("Açúcar", 3.20)
	require.NoError(t, cart.AddItem(p, 2))

	require.NoError(t, cart.UpdateQuantity(p.ID, 0))
	assert.True(t, cart.IsEmpty())
}

func TestCart_RemoveItem_NotInCart(t *testing.T) {
	cart := NewCart(uuid.New())

	err := cart.RemoveItem(uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestCart_TotalIsDerivedAndStable(t *testing.T) {
	cart := NewCart(uuid.New())
	require.NoError(t, cart.AddItem(testProduct("X", 10.00), 2))
	require.NoError(t, cart.AddItem(testProduct("Y", 5.50), 1))

	first := cart.Total()
	second := cart.Total()

	assert.True(t, first.Equal(money.MustFromFloat(25.50)))
	assert.True(t, first.Equal(second))
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCart_Finalize(t *testing.T) {
	cart := NewCart(uuid.New())
	require.NoError(t, cart.AddItem(testProduct("X", 1.00), 1))

	require.NoError(t, cart.Finalize())
	assert.Equal(t, CartStatusFinalized, cart.Status)
}

func TestCart_Finalize_EmptyFails(t *testing.T) {
	cart := NewCart(uuid.New())

	err := cart.Finalize()
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	assert.Equal(t, CartStatusActive, cart.Status)
}

func TestCart_Finalize_TwiceFailsLoudly(t *testing.T) {
	cart := NewCart(uuid.New())
	require.NoError(t, cart.AddItem(testProduct("X", 1.00), 1))
	require.NoError(t, cart.Finalize())

	err := cart.Finalize()
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
	assert.Equal(t, CartStatusFinalized, cart.Status)
}

func TestCart_MutationsRejectedAfterFinalize(t *testing.T) {
	cart := NewCart(uuid.New())
	p := testProduct("X", 1.00)
	require.NoError(t, cart.AddItem(p, 1))
	require.NoError(t, cart.Finalize())

	assert.True(t, apperrors.Is(cart.AddItem(p, 1), apperrors.CodeInvalidState))
	assert.True(t, apperrors.Is(cart.RemoveItem(p.ID), apperrors.CodeInvalidState))
	assert.True(t, apperrors.Is(cart.UpdateQuantity(p.ID, 5), apperrors.CodeInvalidState))
	assert.True(t, apperrors.Is(cart.Clear(), apperrors.CodeInvalidState))
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCart_Cancel(t *testing.T) {
	cart := NewCart(uuid.New())

	require.NoError(t, cart.Cancel())
	assert.Equal(t, CartStatusCancelled, cart.Status)

	err := cart.Cancel()
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

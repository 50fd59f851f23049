package workshop

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAddItemCommandValidate(t *testing.T) {
	orderID, productID := uuid.New(), uuid.New()

	t.Run("catalog line", func(t *testing.T) {
		cmd := AddItemCommand{OrderID: orderID, ProductID: &productID, Qty: 1}
		assert.NoError(t, cmd.Validate())
	})
	t.Run("custom line needs description", func(t *testing.T) {
		cmd := AddItemCommand{OrderID: orderID, Qty: 1, PriceCents: 100}
		assert.ErrorIs(t, cmd.Validate(), ErrValidation)
	})
	t.Run("custom line with negative price", func(t *testing.T) {
		cmd := AddItemCommand{OrderID: orderID, Description: "x", PriceCents: -1, Qty: 1}
		assert.ErrorIs(t, cmd.Validate(), ErrValidation)
	})
	t.Run("qty below one", func(t *testing.T) {
		cmd := AddItemCommand{OrderID: orderID, ProductID: &productID, Qty: 0}
		assert.ErrorIs(t, cmd.Validate(), ErrValidation)
	})
	t.Run("missing order id", func(t *testing.T) {
		cmd := AddItemCommand{ProductID: &productID, Qty: 1}
		assert.ErrorIs(t, cmd.Validate(), ErrValidation)
	})
}

func TestChangeStatusCommandValidate(t *testing.T) {
	cmd := ChangeStatusCommand{OrderID: uuid.New(), To: StatusInProgress}
	assert.NoError(t, cmd.Validate())

	cmd.To = Status("UNKNOWN")
	assert.ErrorIs(t, cmd.Validate(), ErrValidation)
}

func TestSetTaxRateCommandValidate(t *testing.T) {
	cmd := SetTaxRateCommand{TenantID: uuid.New(), Rate: 19}
	assert.NoError(t, cmd.Validate())

	cmd.Rate = -1
	assert.ErrorIs(t, cmd.Validate(), ErrValidation)
	cmd.Rate = 101
	assert.ErrorIs(t, cmd.Validate(), ErrValidation)
}

func TestAdjustStockCommandValidate(t *testing.T) {
	cmd := AdjustStockCommand{ProductID: uuid.New(), Delta: -3}
	assert.NoError(t, cmd.Validate())

	cmd.Delta = 0
	assert.ErrorIs(t, cmd.Validate(), ErrValidation)
}

func TestIntakeOrderCommandValidate(t *testing.T) {
	cmd := IntakeOrderCommand{TenantID: uuid.New(), VehicleID: uuid.New(), ExternalID: "wo-1"}
	assert.NoError(t, cmd.Validate())

	cmd.ExternalID = ""
	assert.ErrorIs(t, cmd.Validate(), ErrValidation)
}

package menu

import (
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

func TestDefaultCatalogPrices(t *testing.T) {
	c := Default()
	require.Len(t, c.Items(), 12)

	price, err := c.Price("Télibo")
	require.NoError(t, err)
	require.EqualValues(t, 3500, price)

	price, err = c.Price("  bissap   traditionnel ")
	require.NoError(t, err)
	require.EqualValues(t, 500, price)
}

func TestUnknownItem(t *testing.T) {
	_, err := Default().Price("Pizza")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestItemsReturnsCopy(t *testing.T) {
	c := Default()
	list := c.Items()
	list[0].Price = 1
	price, err := c.Price(list[0].Name)
	require.NoError(t, err)
	require.NotEqualValues(t, 1, price)
}

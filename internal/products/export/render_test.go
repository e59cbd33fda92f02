package export

import (
	"testing"

	"supermarket-inventory/internal/products"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func catalog() []products.Product {
	return []products.Product{
		{ID: 3, Name: "Milk", Quantity: 10, Price: decimal.RequireFromString("2.50")},
		{ID: 7, Name: "Café, molido", Quantity: 2, Price: decimal.RequireFromString("7.00")},
		{ID: 12, Name: `Queso "fresco"`, Quantity: 1, Price: decimal.RequireFromString("0.99")},
	}
}

func TestRenderGolden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))

	renderers := []struct {
		name   string
		render func([]products.Product) ([]byte, error)
	}{
		{name: "text", render: RenderText},
		{name: "json", render: RenderJSON},
		{name: "csv", render: RenderCSV},
	}

	for _, r := range renderers {
		t.Run(r.name, func(t *testing.T) {
			data, err := r.render(catalog())
			require.NoError(t, err)
			g.Assert(t, "catalog_"+r.name, data)

			empty, err := r.render(nil)
			require.NoError(t, err)
			g.Assert(t, "empty_"+r.name, empty)
		})
	}
}

func TestRender_SequenceNumberIsNotStoreID(t *testing.T) {
	only := []products.Product{{ID: 7, Name: "Sugar", Quantity: 4, Price: decimal.RequireFromString("1.10")}}

	text, err := RenderText(only)
	require.NoError(t, err)
	require.Contains(t, string(text), "\n1. Sugar - Cantidad: 4 - Precio: 1.1\n")
	require.NotContains(t, string(text), "7. Sugar")

	csvData, err := RenderCSV(only)
	require.NoError(t, err)
	require.Equal(t, "id,nombre,cantidad,precio\r\n1,Sugar,4,1.1\r\n", string(csvData))
}

func TestRender_PriceForms(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{price: "3.00", want: "3.0"},
		{price: "0", want: "0.0"},
		{price: "2.50", want: "2.5"},
		{price: "0.99", want: "0.99"},
		{price: "2.555", want: "2.555"},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			only := []products.Product{{ID: 1, Name: "Pan", Quantity: 1, Price: decimal.RequireFromString(tt.price)}}

			text, err := RenderText(only)
			require.NoError(t, err)
			require.Contains(t, string(text), "1. Pan - Cantidad: 1 - Precio: "+tt.want+"\n")

			csvData, err := RenderCSV(only)
			require.NoError(t, err)
			require.Equal(t, "id,nombre,cantidad,precio\r\n1,Pan,1,"+tt.want+"\r\n", string(csvData))

			jsonData, err := RenderJSON(only)
			require.NoError(t, err)
			require.Contains(t, string(jsonData), `"precio": `+tt.want+"\n")
		})
	}
}

func TestRenderJSON_MilkScenario(t *testing.T) {
	data, err := RenderJSON([]products.Product{
		{ID: 1, Name: "Milk", Quantity: 10, Price: decimal.RequireFromString("2.50")},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"productos":[{"nombre":"Milk","cantidad":10,"precio":2.5}]}`, string(data))
}

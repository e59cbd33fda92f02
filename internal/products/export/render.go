package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"supermarket-inventory/internal/products"

	"github.com/shopspring/decimal"
)

const (
	textTitle     = "Inventario Supermercado"
	textSeparator = "-----------------------"
	jsonIndent    = "    "
)

var csvHeader = []string{"id", "nombre", "cantidad", "precio"}

// The "n" written by RenderText and RenderCSV is the 1-based position in the
// listing, never the store id.

// formatPrice writes the shortest decimal form with at least one fractional
// digit: 2.50 is "2.5", 3 is "3.0". Existing consumers of the files expect
// whole prices in that float-like form.
func formatPrice(p decimal.Decimal) string {
	s := p.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func RenderText(items []products.Product) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(textTitle + "\n")
	b.WriteString(textSeparator + "\n")
	for i, p := range items {
		fmt.Fprintf(&b, "%d. %s - Cantidad: %d - Precio: %s\n", i+1, p.Name, p.Quantity, formatPrice(p.Price))
	}
	return b.Bytes(), nil
}

type jsonDocument struct {
	Productos []jsonProduct `json:"productos"`
}

type jsonProduct struct {
	Nombre   string      `json:"nombre"`
	Cantidad int64       `json:"cantidad"`
	Precio   json.Number `json:"precio"`
}

func RenderJSON(items []products.Product) ([]byte, error) {
	doc := jsonDocument{Productos: make([]jsonProduct, 0, len(items))}
	for _, p := range items {
		doc.Productos = append(doc.Productos, jsonProduct{
			Nombre:   p.Name,
			Cantidad: p.Quantity,
			Precio:   json.Number(formatPrice(p.Price)),
		})
	}

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return b.Bytes(), nil
}

func RenderCSV(items []products.Product) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	w.UseCRLF = true
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, p := range items {
		row := []string{
			strconv.Itoa(i + 1),
			p.Name,
			strconv.FormatInt(p.Quantity, 10),
			formatPrice(p.Price),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return b.Bytes(), nil
}

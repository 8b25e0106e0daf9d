package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/dermanow/dermanow/internal/encoding"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/order"
)

func TestParser_EnglishSemicolon(t *testing.T) {
	csv := `Quotation Q-2025-031;Kedai Runcit Aman
Valid until;30-06-2025

Item;Qty;Unit Price
Rice 10kg;10;0.05
Cooking oil 5L;2;0.50
Total;;1.50
`

	sheet, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "english", sheet.Profile)
	assert.Equal(t, encoding.UTF8, sheet.Encoding)
	assert.Equal(t, []order.LineItem{
		{Name: "Rice 10kg", Quantity: 10, UnitPrice: 5},
		{Name: "Cooking oil 5L", Quantity: 2, UnitPrice: 50},
	}, sheet.Items)
	assert.Equal(t, int64(150), order.Total(sheet.Items))
}

func TestParser_MalayComma(t *testing.T) {
	csv := "Nama Barang,Kuantiti,Harga Seunit (RM)\n" +
		"Beras Siam 10kg,3,\"1,234.56\"\n" +
		"Minyak Masak,1,RM 28.90\n"

	sheet, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "malay", sheet.Profile)
	require.Len(t, sheet.Items, 2)
	assert.Equal(t, int64(123456), sheet.Items[0].UnitPrice)
	assert.Equal(t, int64(2890), sheet.Items[1].UnitPrice)
}

func TestParser_EuropeanPricesAndColumnOrder(t *testing.T) {
	csv := `Price;Description;Quantity
1.234,56;Generator;1
12,50;Torchlight;4
`

	sheet, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, sheet.Items, 2)

	assert.Equal(t, order.LineItem{Name: "Generator", Quantity: 1, UnitPrice: 123456}, sheet.Items[0])
	assert.Equal(t, order.LineItem{Name: "Torchlight", Quantity: 4, UnitPrice: 1250}, sheet.Items[1])
}

func TestParser_Windows1252(t *testing.T) {
	utf8CSV := "Item;Qty;Price\nCafé crème sachets;20;1,20\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	sheet, err := importer.NewParser().Parse(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, sheet.Items, 1)

	assert.Equal(t, "Café crème sachets", sheet.Items[0].Name)
	assert.NotEqual(t, encoding.UTF8, sheet.Encoding)
}

func TestParser_NoHeader(t *testing.T) {
	_, err := importer.NewParser().Parse(strings.NewReader("just;some;text\n1;2;3\n"))
	assert.ErrorIs(t, err, importer.ErrNoProfile)
}

func TestParser_EmptyFile(t *testing.T) {
	_, err := importer.NewParser().Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, importer.ErrNoProfile)
}

func TestParser_HeaderOnly(t *testing.T) {
	sheet, err := importer.NewParser().Parse(strings.NewReader("Item;Qty;Price\n"))
	require.NoError(t, err)
	assert.Empty(t, sheet.Items)
}

func TestParser_BadQuantity(t *testing.T) {
	csv := `Item;Qty;Price
Blanket;2;15.00
Tent;1.5;300.00
`

	_, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "quantity")
}

func TestParser_UploadSizeLimit(t *testing.T) {
	header := "Item;Qty;Price\n"
	row := "Blanket;2;15.00\n"

	build := func(size int) string {
		var b strings.Builder
		b.WriteString(header)
		for b.Len()+len(row) <= size {
			b.WriteString(row)
		}
		// Pad the last line so the sheet is exactly size bytes.
		b.WriteString(strings.Repeat(" ", size-b.Len()))
		return b.String()
	}

	t.Run("AtLimit", func(t *testing.T) {
		sheet, err := importer.NewParser().Parse(strings.NewReader(build(importer.MaxUpload)))
		require.NoError(t, err)
		assert.NotEmpty(t, sheet.Items)
	})

	t.Run("OneBytePastLimit", func(t *testing.T) {
		_, err := importer.NewParser().Parse(strings.NewReader(build(importer.MaxUpload + 1)))
		assert.ErrorIs(t, err, importer.ErrTooLarge)
	})
}

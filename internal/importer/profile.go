package importer

import "strings"

// Profile describes the header layout of a line-item sheet. Each column
// accepts several spellings; matching ignores case and surrounding space.
type Profile struct {
	Name      string
	NameCols  []string
	QtyCols   []string
	PriceCols []string
}

// profiles is tried in order; the first whose three columns are all
// present in a row wins.
var profiles = []Profile{
	{
		Name:      "english",
		NameCols:  []string{"item", "item name", "name", "description", "product"},
		QtyCols:   []string{"quantity", "qty"},
		PriceCols: []string{"unit price", "price", "unit cost", "price per unit"},
	},
	{
		Name:      "malay",
		NameCols:  []string{"nama barang", "barang", "item", "keterangan"},
		QtyCols:   []string{"kuantiti", "kuantiti (unit)", "bilangan", "qty"},
		PriceCols: []string{"harga seunit", "harga", "harga (rm)", "harga seunit (rm)"},
	},
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// columns holds the resolved indices of one profile in a header row.
type columns struct {
	name, qty, price int
}

func (p *Profile) match(header []string) (columns, bool) {
	idx := make(map[string]int, len(header))

	for i, cell := range header {
		if h := normalizeHeader(cell); h != "" {
			if _, dup := idx[h]; !dup {
				idx[h] = i
			}
		}
	}

	find := func(names []string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}

		return -1
	}

	c := columns{name: find(p.NameCols), qty: find(p.QtyCols), price: find(p.PriceCols)}
	if c.name < 0 || c.qty < 0 || c.price < 0 {
		return columns{}, false
	}

	return c, true
}

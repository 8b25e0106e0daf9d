package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	enc "github.com/dermanow/dermanow/internal/encoding"
	"github.com/dermanow/dermanow/internal/order"
)

var (
	ErrNoProfile = errors.New("no line-item header found: expected item name, quantity and unit price columns")
	ErrTooLarge  = fmt.Errorf("upload exceeds %d MiB", MaxUpload>>20)
)

// MaxUpload bounds the size of a sheet in bytes.
const MaxUpload = 5 << 20

var delimiters = []rune{';', ',', '\t'}

// Sheet is a parsed line-item upload.
type Sheet struct {
	Items    []order.LineItem
	Profile  string
	Encoding string
}

// Parser reads line-item sheets exported from spreadsheets. It detects
// the text encoding, the delimiter and the header profile.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Sheet, error) {
	// One byte past the limit tells a full sheet from a cut one.
	upload, err := io.ReadAll(io.LimitReader(r, MaxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if len(upload) > MaxUpload {
		return nil, ErrTooLarge
	}

	utf8r, charset, err := enc.Detect(bytes.NewReader(upload))
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}

	for _, d := range delimiters {
		rows, err := readRows(raw, d)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		items, err := parseRows(cols, rows[headerIdx+1:], headerIdx+1)
		if err != nil {
			return nil, err
		}

		return &Sheet{Items: items, Profile: profile.Name, Encoding: charset}, nil
	}

	return nil, ErrNoProfile
}

func readRows(raw []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// detectProfile returns the first row that matches a known profile.
func detectProfile(rows [][]string) (*Profile, columns, int) {
	for rowIdx, row := range rows {
		for i := range profiles {
			if cols, ok := profiles[i].match(row); ok {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, columns{}, 0
}

// parseRows reads items below the header. Blank rows and rows without a
// name or quantity, such as totals footers, are skipped.
func parseRows(cols columns, rows [][]string, headerRowNum int) ([]order.LineItem, error) {
	var items []order.LineItem

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		name := cellValue(row, cols.name)
		qtyCell := cellValue(row, cols.qty)

		if name == "" || qtyCell == "" {
			continue
		}

		qty, err := ParseQuantity(qtyCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity %w", rowNum, err)
		}

		if qty == 0 {
			continue
		}

		price, err := ParsePrice(cellValue(row, cols.price))
		if err != nil {
			return nil, fmt.Errorf("row %d: unit price %w", rowNum, err)
		}

		items = append(items, order.LineItem{Name: name, Quantity: qty, UnitPrice: price})
	}

	return items, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermanow/dermanow/internal/importer"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1234.56", want: 123456},
		{in: "1,234.56", want: 123456},
		{in: "1.234,56", want: 123456},
		{in: "1.234.567,89", want: 123456789},
		{in: "12,50", want: 1250},
		{in: "1,000", want: 100000},
		{in: "RM 28.50", want: 2850},
		{in: "5", want: 500},
		{in: "0", want: 0},
		{in: "92233720368547758.07", want: 9223372036854775807},
		{in: "92233720368547758.08", wantErr: true},
		{in: "184467440737095516.17", wantErr: true},
		{in: "-5.00", wantErr: true},
		{in: "", wantErr: true},
		{in: "free", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := importer.ParsePrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "10", want: 10},
		{in: "10.0", want: 10},
		{in: "1,000", want: 1000},
		{in: "2.5", wantErr: true},
		{in: "9223372036854775808", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := importer.ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermanow/dermanow/internal/http/importcsv"
	"github.com/dermanow/dermanow/internal/importer"
)

func upload(t *testing.T, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "quote.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := chi.NewRouter()
	importcsv.NewHandler(importer.NewService(nil)).Routes(r)

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Import(t *testing.T) {
	rec := upload(t, "Item;Qty;Price\nBlanket;2;15.00\nTent;1;300.00\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Items      []json.RawMessage `json:"items"`
		TotalPrice string            `json:"total_price"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "330", got.TotalPrice)
}

func TestHandler_Import_OversizedUpload(t *testing.T) {
	content := "Item;Qty;Price\n" + strings.Repeat("Blanket;2;15.00\n", importer.MaxUpload/16+1)

	rec := upload(t, content)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestHandler_Import_TotalOverflow(t *testing.T) {
	rec := upload(t, "Item;Qty;Price\nGold;1;92233720368547758.07\nSilver;1;0.01\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

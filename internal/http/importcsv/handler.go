package importcsv

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/http/httpx"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/order"
)

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importSheet)
}

type itemResponse struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type importResponse struct {
	Profile    string          `json:"profile"`
	Encoding   string          `json:"encoding"`
	Renamed    int             `json:"renamed"`
	Items      []itemResponse  `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// importSheet parses an uploaded sheet into line items. The result is a
// preview; the client submits it with a create or edit order request.
func (h *Handler) importSheet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, importer.ErrNoProfile) || errors.Is(err, importer.ErrTooLarge) {
			httpx.Error(w, r, err)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The preview total must fit the same bounds an order does.
	if len(res.Items) > 0 {
		if err := order.ValidateItems(res.Items); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	resp := importResponse{
		Profile:  res.Profile,
		Encoding: res.Encoding,
		Renamed:  res.Renamed,
		Items:    make([]itemResponse, 0, len(res.Items)),
	}

	var total int64
	for _, it := range res.Items {
		sub := it.Subtotal()
		total += sub

		resp.Items = append(resp.Items, itemResponse{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: httpx.Amount(it.UnitPrice),
			Subtotal:  httpx.Amount(sub),
		})
	}

	resp.TotalPrice = httpx.Amount(total)

	httpx.JSON(w, http.StatusOK, resp)
}

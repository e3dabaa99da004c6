package server

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/priceimport"
	"github.com/raterudder/retrofit/pkg/types"
)

// PricesRes is the parsed price series, ready to be placed in
// price.imported of a scenario.
type PricesRes struct {
	Prices []types.HourlyPricePoint `json:"prices"`
}

// importFormat takes the format from ?format= and falls back to the
// request content type.
func importFormat(r *http.Request) (priceimport.Format, bool) {
	switch f := priceimport.Format(r.URL.Query().Get("format")); f {
	case priceimport.FormatCSV, priceimport.FormatJSON:
		return f, true
	case "":
	default:
		return "", false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", false
	}
	switch mt {
	case "text/csv":
		return priceimport.FormatCSV, true
	case "application/json":
		return priceimport.FormatJSON, true
	}
	return "", false
}

func (s *Server) handleImportPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, ok := importFormat(r)
	if !ok {
		writeJSONError(w, "format must be csv or json", http.StatusBadRequest)
		return
	}

	points, err := priceimport.Parse(ctx, r.Body, format)
	if err != nil {
		if errors.Is(err, priceimport.ErrNoPrices) {
			writeJSONError(w, "no valid price points", http.StatusUnprocessableEntity)
			return
		}
		log.Ctx(ctx).WarnContext(ctx, "failed to parse price file", slog.String("format", string(format)), slog.Any("error", err))
		writeJSONError(w, "invalid price file", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, PricesRes{Prices: points})
}

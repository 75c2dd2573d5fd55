package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mohit-pareek09/smart-erp/internal/httpx"
	"github.com/mohit-pareek09/smart-erp/internal/services"
)

// decodeJSON decodes the request body into dst, capping it at 1MB.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}

// idParam reads the ?id= query parameter.
func idParam(r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// writeServiceError translates the services error taxonomy to the flat JSON
// error contract. Anything unrecognized is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		fields := map[string]any{}
		if len(verr.Missing) > 0 {
			fields["required"] = verr.Required
			fields["missing"] = verr.Missing
		}
		if verr.Item != nil {
			fields["required_item_fields"] = verr.Required
			fields["received_item"] = verr.Item
		}
		httpx.JSONFields(w, http.StatusBadRequest, verr.Message, fields)
		return
	}
	var cerr *services.ConflictError
	if errors.As(err, &cerr) {
		httpx.JSONError(w, http.StatusBadRequest, cerr.Message, nil)
		return
	}
	var nferr *services.NotFoundError
	if errors.As(err, &nferr) {
		httpx.JSONFields(w, http.StatusNotFound, nferr.Error(), nferr.Fields)
		return
	}
	var serr *services.InsufficientStockError
	if errors.As(err, &serr) {
		httpx.JSONFields(w, http.StatusBadRequest, "Insufficient inventory quantity", map[string]any{
			"product":   serr.Product,
			"available": serr.Available,
			"requested": serr.Requested,
		})
		return
	}
	log.Printf("handler error: %v", err)
	httpx.JSONError(w, http.StatusInternalServerError, "Server error", nil)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/evidenca/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// errorKinds maps each error sentinel to its HTTP status and a stable code
// clients can switch on. Order matters: ErrConsistency is checked first.
var errorKinds = []struct {
	err    error
	status int
	code   string
}{
	{model.ErrConsistency, http.StatusInternalServerError, "consistency_fault"},
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrMemberIneligible, http.StatusForbidden, "member_ineligible"},
	{model.ErrInvalidState, http.StatusUnprocessableEntity, "invalid_state"},
	{model.ErrUnavailable, http.StatusConflict, "unavailable"},
	{model.ErrAlreadyReturned, http.StatusConflict, "already_returned"},
	{model.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError reports a store error to the client. Rejected operations are
// logged at WARN; faults are logged at ERROR and their details withheld.
func writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	log := requestLogger(r.Context())

	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		if k.status >= http.StatusInternalServerError {
			log.Error(action+" failed", "error", err)
			jsonResponse(w, k.status, map[string]string{
				"error": "internal consistency fault",
				"code":  k.code,
			})
			return
		}
		log.Warn(action+" rejected", "error", err)
		jsonResponse(w, k.status, map[string]string{
			"error": err.Error(),
			"code":  k.code,
		})
		return
	}

	log.Error(action+" failed", "error", err)
	jsonError(w, http.StatusInternalServerError, action+" failed")
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional numeric query parameter. A missing
// parameter yields zero.
func queryID(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil && id > 0
}

// emptyIfNil keeps list endpoints from encoding null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse sends a JSON response with the given status code
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// DetailResponse sends a JSON error body of the form {"detail": "..."}
func DetailResponse(w http.ResponseWriter, statusCode int, detail string) {
	JSONResponse(w, statusCode, map[string]string{"detail": detail})
}

// MaxRequestBodySize limits JSON request bodies; a full batch of domain
// names fits well within it
const MaxRequestBodySize = 64 << 10

// DecodeJSON decodes JSON from a size-limited request body
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// DecodeError answers a request whose body could not be decoded
func DecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		DetailResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	DetailResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

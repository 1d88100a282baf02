package request

import (
	"encoding/json"
	"errors"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies, matching the websocket read limit so a
// document that can be relayed can also be saved.
const MaxBodyBytes = 1 << 20

// DecodeJSON reads at most MaxBodyBytes of r's body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// TooLarge reports whether err came from a body over MaxBodyBytes.
func TooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

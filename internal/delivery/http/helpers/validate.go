package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds request bodies; events and chat lines are small.
const maxBodyBytes = 1 << 20

// Validator is implemented by request DTOs that check their own fields.
// Validate returns one message per problem; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the JSON body into dest, rejecting unknown fields,
// then runs dest.Validate when dest is a Validator. On failure it writes a 400
// and returns false, and the caller should return.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}

// Package responseformat encodes API responses as JSON or MessagePack.
// JSON is the default; firmware builds that prefer a smaller payload
// request MessagePack with ?format=msgpack.
package responseformat

import (
	"encoding/json"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WriteResponse writes the response in the format the request asked for.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any) error {
	// Always set CORS header
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if wantsMsgPack(req) {
		return f.writeMsgPack(w, data)
	}
	return f.writeJSON(w, data)
}

// WriteError writes an error body with the given status, honoring the
// negotiated format.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, message string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	body := map[string]string{"error": message}
	if wantsMsgPack(req) {
		w.Header().Set("Content-Type", "application/x-msgpack")
		w.WriteHeader(status)
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json")
		encoder.Encode(body) //nolint:errcheck // nothing left to do on a failed error write
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func wantsMsgPack(req *http.Request) bool {
	return req.URL.Query().Get("format") == "msgpack"
}

func (f *Formatter) writeJSON(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/x-msgpack")
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}

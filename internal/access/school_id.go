package access

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
)

const (
	SchoolIDParam = "schoolId"

	maxSchoolIDBody = 1 << 20
)

// ResolveSchoolID finds the target school of a request: the route parameter
// first, then a "schoolId" field of a JSON body, then the query string. The
// body is restored so handlers can read it again.
func ResolveSchoolID(r *http.Request) string {
	if id := chi.URLParam(r, SchoolIDParam); id != "" {
		return id
	}
	if id := schoolIDFromBody(r); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get(SchoolIDParam))
}

func schoolIDFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSchoolIDBody))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		SchoolID string `json:"schoolId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.SchoolID)
}

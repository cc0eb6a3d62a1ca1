package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/core/events"
	"github.com/amit1797/Eduadmin-sub000/internal/transport/middleware"
	"github.com/go-chi/chi"
)

const (
	maxAuditBody    = 1 << 20
	maxCapturedBody = 64 << 10
)

// PreImageLoader returns the current state of a resource before it is
// changed. A nil result with a nil error means there is nothing to record.
type PreImageLoader func(ctx context.Context, schoolID, id string) (interface{}, error)

// Locator reads the id of a created resource from the response body. It
// also returns the school the resource belongs to when the route names
// none, or "" to leave it unset.
type Locator func(body []byte) (resourceID, schoolID string)

// TopLevelID locates {"id": ...}.
func TopLevelID(body []byte) (string, string) {
	return idFromBody(body), ""
}

// NestedID locates {key: {"id": ...}}. With tenant set, that id is also the
// entry's school, as when the created resource is the school itself.
func NestedID(key string, tenant bool) Locator {
	return func(body []byte) (string, string) {
		var payload map[string]json.RawMessage
		if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
			return "", ""
		}
		id := idFromBody(payload[key])
		if tenant {
			return id, id
		}
		return id, ""
	}
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Middleware struct {
	bus    Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewMiddleware(bus Publisher, logger *slog.Logger) *Middleware {
	return &Middleware{
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	if cw.status == 0 {
		cw.status = code
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	if room := maxCapturedBody - cw.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		cw.body.Write(b[:room])
	}
	return cw.ResponseWriter.Write(b)
}

// Track records successful POST, PUT, PATCH and DELETE requests against
// resource. loader may be nil.
func (m *Middleware) Track(resource string, loader PreImageLoader) func(http.Handler) http.Handler {
	return m.track(resource, loader, TopLevelID)
}

// TrackCreated records creates whose response does not carry the id at the
// top level.
func (m *Middleware) TrackCreated(resource string, locate Locator) func(http.Handler) http.Handler {
	return m.track(resource, nil, locate)
}

func (m *Middleware) track(resource string, loader PreImageLoader, locate Locator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action, mutating := ActionFor(r.Method)
			if !mutating {
				next.ServeHTTP(w, r)
				return
			}

			var reqBody []byte
			if r.Body != nil {
				reqBody, _ = io.ReadAll(io.LimitReader(r.Body, maxAuditBody))
				_ = r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			ctx := r.Context()
			schoolID := schoolIDFor(r)
			resourceID := chi.URLParam(r, "id")

			var preImage interface{}
			if loader != nil && action != ActionCreate && resourceID != "" {
				img, err := loader(ctx, schoolID, resourceID)
				if err != nil {
					m.logger.Debug("audit pre-image unavailable", "resource", resource, "resource_id", resourceID, "error", err)
				} else {
					preImage = img
				}
			}

			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			status := cw.status
			if status == 0 {
				status = http.StatusOK
			}
			if status < 200 || status >= 300 {
				return
			}

			user, ok := internal.UserFromContext(ctx)
			if !ok {
				return
			}

			if resourceID == "" {
				var located string
				resourceID, located = locate(cw.body.Bytes())
				if schoolID == "" {
					schoolID = located
				}
			}

			entry := Entry{
				UserID:     user.ID,
				Action:     action,
				Resource:   resource,
				ResourceID: optional(resourceID),
				OldValues:  redactedJSON(preImage),
				NewValues:  redactedBody(reqBody),
				SchoolID:   optional(schoolID),
				IPAddress:  optional(clientIP(r)),
				UserAgent:  optional(r.UserAgent()),
				CreatedAt:  m.now().UTC(),
			}

			// the request context is cancelled once the response is written
			if err := m.bus.Publish(context.WithoutCancel(ctx), NewRecordedEvent(entry)); err != nil {
				m.logger.Error("audit publish failed", "resource", resource, "error", err)
			}
		})
	}
}

func schoolIDFor(r *http.Request) string {
	if id := internal.SchoolIDFromContext(r.Context()); id != "" {
		return id
	}
	if id := chi.URLParam(r, access.SchoolIDParam); id != "" {
		return id
	}
	if u, ok := internal.UserFromContext(r.Context()); ok && u.SchoolID != nil {
		return *u.SchoolID
	}
	return ""
}

func idFromBody(body []byte) string {
	var payload struct {
		ID interface{} `json:"id"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	switch v := payload.ID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func redactedBody(body []byte) *string {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return redactedJSON(payload)
}

func redactedJSON(v interface{}) *string {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out, err := json.Marshal(middleware.RedactJSON(generic))
	if err != nil {
		return nil
	}
	s := string(out)
	return &s
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

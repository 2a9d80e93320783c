package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/library-service-go/library"
)

// routeKey identifies one wire operation: the first path segment plus the
// HTTP method. The trailing path segment, when present, is the numeric
// identifier handed to the bound handler.
type routeKey struct {
	resource string
	method   string
}

// handlerFunc handles one routed request. rawID is the second path segment
// and is empty for collection routes.
type handlerFunc func(w http.ResponseWriter, r *http.Request, rawID string)

// Server adapts a LibraryService to HTTP. Construct it with NewServer and
// mount it as an http.Handler.
type Server struct {
	service LibraryService
	logger  *slog.Logger
	routes  map[routeKey]handlerFunc
}

// NewServer wires the route table for the given service. A nil logger
// falls back to slog.Default.
func NewServer(service LibraryService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{service: service, logger: logger}

	s.routes = map[routeKey]handlerFunc{
		{resource: "books", method: http.MethodGet}:    s.handleQueryBooks,
		{resource: "books", method: http.MethodPost}:   s.handleStoreBooks,
		{resource: "books", method: http.MethodPut}:    s.handleModifyBook,
		{resource: "books", method: http.MethodDelete}: s.handleRemoveBook,
		{resource: "books", method: http.MethodPatch}:  s.handleIncBookStock,

		{resource: "cards", method: http.MethodGet}:    s.handleListCards,
		{resource: "cards", method: http.MethodPost}:   s.handleRegisterCard,
		{resource: "cards", method: http.MethodPut}:    s.handleModifyCard,
		{resource: "cards", method: http.MethodDelete}: s.handleRemoveCard,

		{resource: "borrows", method: http.MethodGet}:  s.handleBorrowHistory,
		{resource: "borrows", method: http.MethodPost}: s.handleBorrowBook,
		{resource: "borrows", method: http.MethodPut}:  s.handleReturnBook,
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	writeCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.route(recorder, r)

	s.logger.Info("request handled",
		"requestID", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", recorder.status,
		"durationMS", float64(time.Since(started).Microseconds())/1000.0)
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	resource, rawID, ok := splitPath(r.URL.Path)
	if !ok {
		s.writeEnvelope(w, http.StatusNotFound,
			responseEnvelope{Success: false, Error: "unknown resource"})

		return
	}

	handler, found := s.routes[routeKey{resource: resource, method: r.Method}]
	if !found {
		s.writeEnvelope(w, http.StatusMethodNotAllowed,
			responseEnvelope{Success: false, Error: "method not allowed"})

		return
	}

	handler(w, r, rawID)
}

// splitPath accepts "/resource" and "/resource/{id}" shapes only.
func splitPath(path string) (resource string, rawID string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch len(parts) {
	case 1:
		return parts[0], "", parts[0] != ""
	case 2:
		return parts[0], parts[1], parts[1] != ""
	default:
		return "", "", false
	}
}

func parseID(rawID string) (int64, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, library.ErrInvalidIdentifier
	}

	return id, nil
}

func writeCORSHeaders(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

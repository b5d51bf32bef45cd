package transport

import (
	"encoding/json"
	stdErrors "errors" // Alias for standard errors package
	"net/http"
	"slices"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"powersight-server/internal/config"
	"powersight-server/internal/errors"
	"powersight-server/internal/logging"
	"powersight-server/internal/metrics"
	"powersight-server/internal/models"
	"powersight-server/internal/service"
)

const (
	routeFiles       = "/api/files"
	routeFileContent = "/api/file-content"
	routeMetrics     = "/metrics"

	// DetectedEncodingHeader names the encoding that decoded a file content response.
	DetectedEncodingHeader = "X-Content-Encoding-Detected"
)

// HTTPHandler handles HTTP requests for file operations.
type HTTPHandler struct {
	service service.FileBrowserService
	logger  *zap.Logger
	metrics *metrics.Metrics // nil disables /metrics and request metrics
}

// NewHTTPHandler creates a new HTTPHandler. m may be nil.
func NewHTTPHandler(svc service.FileBrowserService, logger *zap.Logger, m *metrics.Metrics) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		service: svc,
		logger:  logger,
		metrics: m,
	}
}

// RegisterRoutes sets up the HTTP routes for the handler.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHealthCheck)
	mux.HandleFunc("GET "+routeFiles, h.handleListFiles)
	mux.HandleFunc("GET "+routeFileContent, h.handleFileContent)
	if h.metrics != nil {
		mux.Handle("GET "+routeMetrics, h.metrics.Handler())
	}
	mux.HandleFunc("/", h.handleUnmatched)
}

// handleUnmatched answers every request no route accepts, keeping the
// {"detail": ...} shape for 404 and 405.
func (h *HTTPHandler) handleUnmatched(w http.ResponseWriter, r *http.Request) {
	known := []string{"/", routeFiles, routeFileContent}
	if h.metrics != nil {
		known = append(known, routeMetrics)
	}
	if slices.Contains(known, r.URL.Path) {
		w.Header().Set("Allow", "GET, HEAD")
		h.writeJSONResponse(w, r, http.StatusMethodNotAllowed, models.ErrorResponse{Detail: "Method Not Allowed"})
		return
	}
	h.writeJSONResponse(w, r, http.StatusNotFound, models.ErrorResponse{Detail: "Not Found"})
}

// writeJSONResponse is a helper to write JSON data to the response.
func (h *HTTPHandler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error, but response header is already sent.
		logging.WithContext(r.Context(), h.logger).Warn("encoding JSON response", zap.Error(err))
	}
}

// writeJSONErrorResponse maps err to a status code and writes {"detail": ...}.
func (h *HTTPHandler) writeJSONErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.MapErrorToHTTPStatus(err)
	logger := logging.WithContext(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}

	var e *errors.Error
	detail := err.Error()
	if !stdErrors.As(err, &e) {
		detail = errors.NewInternalError(err).Message
	}
	h.writeJSONResponse(w, r, status, models.ErrorResponse{Detail: detail})
}

func (h *HTTPHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, r, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Message:   "PowerSight Backend is running",
		Endpoints: []string{routeFiles, routeFileContent},
	})
}

func (h *HTTPHandler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("path") {
		h.writeJSONErrorResponse(w, r, errors.NewMissingParamError("path"))
		return
	}

	files, err := h.service.ListCSVFiles(r.Context(), models.ListFilesRequest{Path: query.Get("path")})
	if err != nil {
		h.writeJSONErrorResponse(w, r, err)
		return
	}

	h.writeJSONResponse(w, r, http.StatusOK, files)
}

func (h *HTTPHandler) handleFileContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	for _, name := range []string{"path", "filename"} {
		if !query.Has(name) {
			h.writeJSONErrorResponse(w, r, errors.NewMissingParamError(name))
			return
		}
	}

	content, err := h.service.ReadFileContent(r.Context(), models.FileContentRequest{
		Path:     query.Get("path"),
		Filename: query.Get("filename"),
	})
	if err != nil {
		h.writeJSONErrorResponse(w, r, err)
		return
	}

	logger := logging.WithContext(r.Context(), h.logger)
	logger.Debug("serving file content",
		zap.String("encoding", content.Encoding),
		zap.Int64("file_size", content.Size),
		zap.Int("text_size", len(content.Text)),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(DetectedEncodingHeader, content.Encoding)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content.Text)); err != nil {
		logger.Warn("writing file content", zap.Error(err))
	}
}

// Handler builds the full middleware chain around the routes.
// CORS runs first so preflight requests never reach the mux.
func (h *HTTPHandler) Handler(cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var handler http.Handler = mux
	if h.metrics != nil {
		handler = h.metrics.Middleware(handler)
	}
	if cfg.EnableGzip {
		handler = gzhttp.GzipHandler(handler)
	}
	handler = logging.Middleware(h.logger)(handler)
	return newCORS(cfg.CORSOrigins).Handler(handler)
}

// newCORS allows any origin when origins contains "*". The request origin is
// echoed back instead of "*" because browsers reject a wildcard on
// credentialed requests.
func newCORS(origins []string) *cors.Cors {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{DetectedEncodingHeader, logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}
	if slices.Contains(origins, "*") {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return cors.New(opts)
}

// NewServer builds the HTTP server for cfg. Callers run ListenAndServe and
// Shutdown on the returned value.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

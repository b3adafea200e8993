package http

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"slices"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/wot-oss/fwreg/internal/app/http/common"
	"github.com/wot-oss/fwreg/internal/app/http/cors"
	"github.com/wot-oss/fwreg/internal/site"
	"github.com/wot-oss/fwreg/internal/utils"
)

// served with Cache-Control: no-store
var noStoreFiles = []string{site.ManifestsFile, site.IndexFile}

type ServerOptions struct {
	CORS cors.CORSOptions
}

// NewSiteHandler returns a handler serving the assembled site in dist read-only
func NewSiteHandler(ctx context.Context, dist string, opts ServerOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests(ctx))
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").Handler(siteFiles(dist)).Methods(http.MethodGet, http.MethodHead)

	return cors.Protect(handlers.CompressHandler(r), opts.CORS)
}

func siteFiles(dist string) http.Handler {
	fs := http.FileServer(http.Dir(dist))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(common.HeaderXContentTypeOptions, common.NoSniff)
		if slices.Contains(noStoreFiles, path.Base(r.URL.Path)) {
			w.Header().Set(common.HeaderCacheControl, common.NoStore)
		}
		fs.ServeHTTP(w, r)
	})
}

type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	body, _ := json.Marshal(healthStatus{Status: "ok", Version: utils.GetFwregVersion()})
	w.Header().Set(common.HeaderContentType, common.MimeJSON)
	w.Header().Set(common.HeaderCacheControl, common.NoStore)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequests(ctx context.Context) mux.MiddlewareFunc {
	log := utils.GetLogger(ctx, "serve")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

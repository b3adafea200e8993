package cors

import (
	"net/http"
	"slices"

	"github.com/gorilla/handlers"
	"github.com/wot-oss/fwreg/internal/app/http/common"
)

type CORSOptions struct {
	allowedOrigins   []string
	allowedHeaders   []string
	allowCredentials bool
	maxAge           int
}

func (co *CORSOptions) AddAllowedOrigins(origins ...string) {
	for _, origin := range origins {
		if origin != "" && !slices.Contains(co.allowedOrigins, origin) {
			co.allowedOrigins = append(co.allowedOrigins, origin)
		}
	}
}

func (co *CORSOptions) AddAllowedHeaders(headers ...string) {
	for _, header := range headers {
		if header != "" && !slices.Contains(co.allowedHeaders, header) {
			co.allowedHeaders = append(co.allowedHeaders, header)
		}
	}
}

func (co *CORSOptions) AllowCredentials(allow bool) {
	co.allowCredentials = allow
}

func (co *CORSOptions) MaxAge(max int) {
	co.maxAge = max
}

// Protect wraps h with a CORS handler. The site is read-only, so only safe methods are allowed.
// Without configured origins, any origin is allowed
func Protect(h http.Handler, opts CORSOptions) http.Handler {
	opts.AddAllowedHeaders(common.HeaderContentType, common.HeaderRange)

	var corsOpts []handlers.CORSOption
	corsOpts = append(corsOpts, handlers.AllowedHeaders(opts.allowedHeaders))
	if len(opts.allowedOrigins) > 0 {
		corsOpts = append(corsOpts, handlers.AllowedOrigins(opts.allowedOrigins))
	}
	corsOpts = append(corsOpts, handlers.AllowedMethods([]string{
		http.MethodGet,
		http.MethodOptions,
		http.MethodHead}))

	if opts.allowCredentials {
		corsOpts = append(corsOpts, handlers.AllowCredentials())
	}
	if opts.maxAge > 0 {
		corsOpts = append(corsOpts, handlers.MaxAge(opts.maxAge))
	}

	return handlers.CORS(corsOpts...)(h)
}

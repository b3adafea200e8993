package common

const (
	HeaderContentType         = "Content-Type"
	HeaderCacheControl        = "Cache-Control"
	HeaderRange               = "Range"
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	MimeJSON                  = "application/json"
	NoSniff                   = "nosniff"
	NoStore                   = "no-store"
)

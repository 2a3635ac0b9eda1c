package handlers

import (
	"compress/gzip"
	"net/http"

	"github.com/NYTimes/gziphandler"
)

// Verdict payloads are small JSON documents, anything that fits a single ethernet frame isn't
// worth compressing.
const gzipMinSize = 1500

// WithGzipHandler compresses responses for clients that accept it
func WithGzipHandler() HandlerWrapper {
	return func(handler http.Handler) http.Handler {
		wrapper, _ := gziphandler.GzipHandlerWithOpts(
			gziphandler.CompressionLevel(gzip.BestCompression),
			gziphandler.MinSize(gzipMinSize),
		)

		return wrapper(handler)
	}
}

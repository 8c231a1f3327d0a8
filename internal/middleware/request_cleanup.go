package middleware

import (
	"io"
	"net/http"
)

// maxDrainBytes caps what is read from an unconsumed request body. A larger
// remainder is left unread and the connection is not reused.
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest reads what the handler left of the request body and
// closes it, so the keep-alive connection can serve the next request.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}

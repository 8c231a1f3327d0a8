package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorsMiddleware(t *testing.T) {
	testCases := []struct {
		name           string
		allowed        []string
		origin         string
		expectCors     bool
		expectedStatus int
	}{
		{
			name:           "AllowedOrigin",
			allowed:        []string{"https://gym.example.com"},
			origin:         "https://gym.example.com",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "AllowedOriginTrailingSlashInConfig",
			allowed:        []string{"http://localhost:8080/"},
			origin:         "http://localhost:8080",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NotAllowedOrigin",
			allowed:        []string{"https://gym.example.com"},
			origin:         "https://www.notallowed.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Wildcard",
			allowed:        []string{"*"},
			origin:         "https://anywhere.example.com",
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NoOrigin",
			allowed:        nil,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req, err := http.NewRequest("GET", "/workouts/2025-09-28", nil)
			require.NoError(t, err)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}

			nextCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})
			Cors(tc.allowed)(nextHandler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedStatus == http.StatusOK, nextCalled)
			if tc.expectCors {
				assert.Equal(t, tc.origin, rr.Header().Get("Access-Control-Allow-Origin"))
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

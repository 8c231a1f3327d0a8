package apperr

import (
	"errors"
	"net/http"

	"github.com/2beens/gymtracker/pkg"

	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// WriteHTTPError writes err as {"error": kind, "detail": text} with the status mapped from its kind.
// Causes of internal and storage errors are logged, not returned to the client.
func WriteHTTPError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	resp := ErrorResponse{
		Error: string(KindOf(err)),
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		resp.Detail = appErr.Detail
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("request failed [%d]: %s", status, err)
		if resp.Detail == "" {
			resp.Detail = "internal error"
		}
	}

	pkg.WriteJSONResponse(w, resp, status)
}

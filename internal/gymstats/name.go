package gymstats

import (
	"strings"

	"github.com/2beens/gymtracker/internal/apperr"
)

// ValidateName checks an exercise or template name. Names travel as single
// URL path segments, so they may not contain a slash.
func ValidateName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.New(apperr.InvalidInput, "%s name must not be empty", what)
	}
	if strings.Contains(name, "/") {
		return apperr.New(apperr.InvalidInput, "%s name [%s] must not contain '/'", what, name)
	}
	return nil
}

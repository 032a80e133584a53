package http

import (
	"fmt"
	"net/http"
	"time"

	apperrors "roombook/pkg/errors"
)

// ParseTimeParam reads an RFC3339 query parameter. A missing parameter yields
// the zero time so the caller decides whether it is required.
func ParseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s format, must be RFC3339", name))
	}
	return t, nil
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/response"
)

var errInvalidID = errors.New("invalid id")

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNoThumbnail):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPriceSpan), errors.Is(err, errInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrFetchInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidURL),
		errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrDecoding),
		errors.Is(err, domain.ErrNetwork):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	response.Error(w, status, err)
}

func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

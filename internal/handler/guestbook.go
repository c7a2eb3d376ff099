package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/deppfellow/guestbook/internal/errs"
	"github.com/deppfellow/guestbook/internal/lib/ratelimit"
	"github.com/deppfellow/guestbook/internal/middleware"
	"github.com/deppfellow/guestbook/internal/model"
	"github.com/deppfellow/guestbook/internal/server"
	"github.com/deppfellow/guestbook/internal/service"
	"github.com/deppfellow/guestbook/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Bodies of the edit endpoint's error responses.
const (
	msgNotAuthenticated = "Not authenticated"
	msgInvalidID        = "Invalid id"
	msgNoPermission     = "No permission"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

type errorResponse struct {
	Error any `json:"error"`
}

type GuestbookHandler struct {
	Handler
	guestbook *service.GuestbookService
	rateLimit *middleware.RateLimitMiddleware
}

func NewGuestbookHandler(s *server.Server, guestbook *service.GuestbookService, rateLimit *middleware.RateLimitMiddleware) *GuestbookHandler {
	return &GuestbookHandler{
		Handler:   NewHandler(s),
		guestbook: guestbook,
		rateLimit: rateLimit,
	}
}

// EditEntry handles POST /guestbook/edit/:id. The steps run strictly in
// order: authenticate, rate limit, decode id, validate body, authorize and
// update. Every failure is answered here rather than by the global error
// handler.
func (h *GuestbookHandler) EditEntry(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := h.guestbook.Authenticate(ctx)
	if err != nil {
		return h.writeEditError(c, err)
	}
	c.Set(middleware.UserIDKey, identity.UserID)

	limit, err := h.guestbook.Admit(ctx, identity)
	setRateLimitHeaders(c, limit)
	if err != nil {
		return h.writeEditError(c, err)
	}

	id, err := h.guestbook.DecodeID(c.Param("id"))
	if err != nil {
		return h.writeEditError(c, err)
	}

	var payload model.EditEntryPayload
	if err := validation.DecodeJSONAndValidate(c, &payload); err != nil {
		return h.writeEditError(c, &service.ValidationError{Err: err})
	}

	result, err := h.guestbook.Edit(ctx, identity, id, &payload)
	if err != nil {
		return h.writeEditError(c, err)
	}

	middleware.GetLogger(c).Info().
		Int64("entry_id", id).
		Int64("row_count", result.RowCount).
		Bool("site_owner", identity.SiteOwner).
		Msg("guestbook entry edited")

	return c.JSON(http.StatusOK, result)
}

func (h *GuestbookHandler) writeEditError(c echo.Context, err error) error {
	var (
		invalidID      *service.InvalidIDError
		invalidPayload *service.ValidationError
	)

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgNotAuthenticated})

	case errors.Is(err, service.ErrRateLimited):
		h.rateLimit.RecordRateLimitHit(c.Path())
		return c.String(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))

	case errors.As(err, &invalidID):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})

	case errors.As(err, &invalidPayload):
		var httpErr *errs.HTTPError
		if errors.As(invalidPayload.Err, &httpErr) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: httpErr})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: invalidPayload.Err.Error()})

	case errors.Is(err, service.ErrNoPermission):
		return c.JSON(http.StatusForbidden, errorResponse{Error: msgNoPermission})
	}

	middleware.GetLogger(c).Error().Stack().Err(err).Msg("guestbook edit failed")
	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		txn.NoticeError(nrpkgerrors.Wrap(err))
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func setRateLimitHeaders(c echo.Context, res *ratelimit.Result) {
	if res == nil {
		return
	}

	header := c.Response().Header()
	header.Set(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
	header.Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
	header.Set(HeaderRateLimitReset, strconv.FormatInt(res.Reset.Unix(), 10))

	if !res.Success {
		retryAfter := int(time.Until(res.Reset).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		header.Set(echo.HeaderRetryAfter, strconv.Itoa(retryAfter))
	}
}

// GetEntry handles GET /guestbook/:id.
func (h *GuestbookHandler) GetEntry(c echo.Context, req *model.GetEntryRequest) (*model.EntryResponse, error) {
	entry, err := h.guestbook.Get(c.Request().Context(), req.ID)

	var invalidID *service.InvalidIDError
	if errors.As(err, &invalidID) {
		return nil, errs.NewBadRequestError(msgInvalidID, true, nil, nil)
	}
	return entry, err
}

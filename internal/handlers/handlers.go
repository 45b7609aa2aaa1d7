package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/auth"
	"go-pos-ledger/internal/checkout"
	"go-pos-ledger/internal/database"
	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Assistant answers free-text questions from admins.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Deps is everything the handlers are built from.
type Deps struct {
	Store     *database.Store
	Settings  *settings.Provider
	Issuer    *auth.Issuer
	Metrics   *metrics.Metrics
	Assistant Assistant
	Location  *time.Location
}

// Handler serves the JSON API.
type Handler struct {
	store     *database.Store
	checkout  *checkout.Service
	settings  *settings.Provider
	issuer    *auth.Issuer
	metrics   *metrics.Metrics
	assistant Assistant
	loc       *time.Location
	now       func() time.Time
}

func New(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		store:     d.Store,
		checkout:  checkout.NewService(d.Store),
		settings:  d.Settings,
		issuer:    d.Issuer,
		metrics:   d.Metrics,
		assistant: d.Assistant,
		loc:       loc,
		now:       time.Now,
	}
}

// fail answers with the status the error maps to. Server-side failures are
// logged and their details kept out of the response.
func fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	entry := middleware.Logger(c).WithError(err)

	switch {
	case status == http.StatusBadGateway:
		entry.Error("upstream failure")
		c.JSON(status, gin.H{"error": "A backend service is unavailable, please try again"})
	case status >= 500:
		entry.Error("unexpected failure")
		c.JSON(status, gin.H{"error": "Internal server error"})
	default:
		entry.Info("request refused")
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// bind parses the JSON body into dst, tagging failures as invalid input.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.Wrapf(apperrors.ErrInvalidInput, "request body: %v", err)
	}
	return nil
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(apperrors.ErrInvalidInput, "invalid %s %q", name, c.Param(name))
	}
	return uint(id), nil
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/keys"
	"github.com/gamepanel/user-service/internal/query"
	"github.com/gamepanel/user-service/shared/cqrs"
	"github.com/gamepanel/user-service/shared/logger"
	"github.com/gamepanel/user-service/shared/middleware"
	"github.com/gamepanel/user-service/shared/models"
	"github.com/gin-gonic/gin"
)

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserDocument, error)
}

// UserHandler serves the aggregated user document.
type UserHandler struct {
	queries UserQuerier
	log     *logger.Logger
}

type GetUserParams struct {
	UserID string `uri:"userId" validate:"required,numeric,max=19"`
}

func NewUserHandler(queries UserQuerier, log *logger.Logger) *UserHandler {
	return &UserHandler{queries: queries, log: log}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	var params GetUserParams
	if err := c.ShouldBindUri(&params); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	if validationErrors := middleware.ValidateRequest(params); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	userID, err := strconv.ParseInt(params.UserID, 10, 64)
	if err != nil || userID <= 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	requestedBy, _ := middleware.GetUserID(c)
	doc, err := h.queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{
		UserID:          userID,
		RequestedBy:     requestedBy,
		RequestedByRole: middleware.GetRole(c),
	})
	if err != nil {
		h.respondWithQueryError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// respondWithQueryError maps aggregation errors to a status. Store details
// stay in the logs.
func (h *UserHandler) respondWithQueryError(c *gin.Context, userID int64, err error) {
	kv := []interface{}{"userId", userID, "requestId", middleware.GetRequestID(c), "error", err}
	_ = c.Error(err)

	var depErr *capability.DependencyError
	switch {
	case errors.Is(err, query.ErrUserNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	case errors.As(err, &depErr):
		h.log.Error("capability set rejected", kv...)
	case errors.Is(err, keys.ErrKeysUnavailable):
		h.log.Warn("user has no steam identifiers for gameplay data", kv...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Info("user lookup abandoned", kv...)
	default:
		h.log.Error("user lookup failed", kv...)
	}
	middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to load user")
}

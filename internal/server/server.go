package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/domain/estate"
	"github.com/estateline/activitylog/internal/transport"
)

// Config carries the dependencies of the HTTP API.
type Config struct {
	Activity *activity.Service
	Estates  *estate.Service
	Auth     transport.IdentityResolver
	BasePath string
	Logger   *slog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"bad_request"`
	Message string         `json:"message" example:"invalid estate id"`
	Details map[string]any `json:"details,omitempty"`
}

// apiError is the envelope every error response uses.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body:   apiErrorBody{Code: code, Message: message, Details: details},
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
	}
}

// New builds the HTTP handler exposing the activity log API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Activity == nil {
		return nil, errors.New("activity service is required")
	}
	if cfg.Estates == nil {
		return nil, errors.New("estate service is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("identity resolver is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	// Frame every huma-generated error in the shared envelope. Request
	// validation failures come back as 400, not huma's default 422.
	huma.NewError = func(status int, message string, _ ...error) huma.StatusError {
		return newAPIError(status, "", message, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, message string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			msgs := make([]string, 0, len(errs))
			for _, err := range errs {
				msgs = append(msgs, err.Error())
			}
			details = map[string]any{"errors": msgs}
		}
		return newAPIError(status, "", message, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(transport.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(newAuthMiddleware(basePath, cfg.Auth))

	api := humachi.New(router, huma.DefaultConfig("Activity Log API", "1.0.0"))
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerFeed(group, cfg.Activity, logger)
	registerEvents(group, cfg.Activity)
	registerEstates(group, cfg.Estates)

	return router, nil
}

// handleError maps domain errors onto HTTP status codes.
func handleError(err error) huma.StatusError {
	switch {
	case errors.Is(err, activity.ErrInvalidEstateID),
		errors.Is(err, estate.ErrInvalidInput):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, activity.ErrInvalidUserID):
		return newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil)
	case errors.Is(err, estate.ErrEstateNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, estate.ErrAlreadyMember):
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func userFromContext(ctx context.Context) (string, huma.StatusError) {
	if userID, ok := transport.UserFromContext(ctx); ok && userID != "" {
		return userID, nil
	}
	return "", newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(_ context.Context, _ *struct{}) (*struct {
		Body struct {
			Status string `json:"status" example:"ok"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status" example:"ok"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})
}

func registerFeed(api huma.API, svc *activity.Service, logger *slog.Logger) {
	huma.Register(api, huma.Operation{
		OperationID: "get-feed",
		Method:      http.MethodGet,
		Path:        "/feed",
		Summary:     "Activity feed",
		Description: "One page of the activity visible to the caller, newest first. Pass the returned next_cursor to fetch the following page.",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		EstateID string `query:"estate_id" doc:"Limit the feed to a single estate"`
		Cursor   string `query:"cursor" doc:"Opaque cursor from a previous page"`
		Limit    int    `query:"limit" doc:"Page size, clamped to the server maximum"`
	}) (*struct {
		Body activity.Page
	}, error) {
		userID, authErr := userFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}

		page, err := svc.ListEvents(ctx, userID, activity.ListOptions{
			EstateID: input.EstateID,
			Cursor:   input.Cursor,
			Limit:    input.Limit,
		})
		if err != nil {
			if errors.Is(err, activity.ErrInvalidEstateID) {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
			}
			if errors.Is(err, activity.ErrInvalidUserID) {
				return nil, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			}
			logger.Error("feed query failed", "error", err)
			return nil, newAPIError(http.StatusServiceUnavailable, "feed_unavailable", "the activity feed is temporarily unavailable", nil)
		}

		return &struct{ Body activity.Page }{Body: *page}, nil
	})
}

func registerEvents(api huma.API, svc *activity.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "append-event",
		Method:        http.MethodPost,
		Path:          "/events",
		Summary:       "Append event",
		Description:   "Record a single activity event against an estate.",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body AppendEventRequest
	}) (*struct {
		Body EventCreatedResponse
	}, error) {
		if _, authErr := userFromContext(ctx); authErr != nil {
			return nil, authErr
		}

		id, err := svc.Append(ctx, activity.AppendRequest{
			EstateID:    input.Body.EstateID,
			Category:    input.Body.Category,
			Action:      input.Body.Action,
			Message:     input.Body.Message,
			SubjectID:   input.Body.SubjectID,
			SubjectType: input.Body.SubjectType,
			Detail:      input.Body.Detail,
		})
		if err != nil {
			return nil, handleError(err)
		}

		return &struct{ Body EventCreatedResponse }{Body: EventCreatedResponse{ID: id}}, nil
	})
}

func registerEstates(api huma.API, svc *estate.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-estate",
		Method:        http.MethodPost,
		Path:          "/estates",
		Summary:       "Create estate",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body CreateEstateRequest
	}) (*struct {
		Body EstateResponse
	}, error) {
		userID, authErr := userFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}

		est, err := svc.Create(ctx, estate.CreateRequest{
			ID:      input.Body.ID,
			Name:    input.Body.Name,
			Address: input.Body.Address,
			OwnerID: userID,
		})
		if err != nil {
			return nil, handleError(err)
		}

		return &struct{ Body EstateResponse }{Body: estateResponse(est)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-estates",
		Method:      http.MethodGet,
		Path:        "/estates",
		Summary:     "List estates",
		Description: "Every estate the caller owns or collaborates on.",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Items []EstateSummaryResponse `json:"items"`
		}
	}, error) {
		userID, authErr := userFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}

		items, err := svc.List(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}

		resp := &struct {
			Body struct {
				Items []EstateSummaryResponse `json:"items"`
			}
		}{}
		resp.Body.Items = summaryResponses(items)
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-estate",
		Method:      http.MethodGet,
		Path:        "/estates/{estate_id}",
		Summary:     "Get estate",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		EstateID string `path:"estate_id" doc:"Estate UUID"`
	}) (*struct {
		Body EstateResponse
	}, error) {
		if _, authErr := userFromContext(ctx); authErr != nil {
			return nil, authErr
		}

		est, err := svc.Get(ctx, input.EstateID)
		if err != nil {
			return nil, handleError(err)
		}

		return &struct{ Body EstateResponse }{Body: estateResponse(est)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "share-estate",
		Method:        http.MethodPost,
		Path:          "/estates/{estate_id}/members",
		Summary:       "Share estate",
		Description:   "Grant another user access to an estate.",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		EstateID string `path:"estate_id" doc:"Estate UUID"`
		Body     ShareEstateRequest
	}) (*struct {
		Body MemberResponse
	}, error) {
		if _, authErr := userFromContext(ctx); authErr != nil {
			return nil, authErr
		}

		member, err := svc.Share(ctx, estate.ShareRequest{
			EstateID: input.EstateID,
			UserID:   input.Body.UserID,
			Role:     estate.Role(input.Body.Role),
		})
		if err != nil {
			return nil, handleError(err)
		}

		return &struct{ Body MemberResponse }{Body: memberResponse(member)}, nil
	})
}

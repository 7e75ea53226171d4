package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/clock"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/reconcile"
	"laundry-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	svc          *booking.Service
	job          *reconcile.Job
	clock        clock.Clock
	webpush      *webpush.Options
	sharedSecret string
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *booking.Service, job *reconcile.Job, clk clock.Clock, webpushOptions *webpush.Options, sharedSecret string) *Handler {
	return &Handler{
		store:        s,
		svc:          svc,
		job:          job,
		clock:        clk,
		webpush:      webpushOptions,
		sharedSecret: sharedSecret,
	}
}

// actorFrom reads the acting party from request headers. Authentication is an
// external collaborator; by the time a request reaches this service the
// gateway has resolved the token to an id and role.
func actorFrom(c *gin.Context) (booking.Actor, bool) {
	id := c.GetHeader("X-Actor-ID")
	role := model.Role(c.GetHeader("X-Actor-Role"))
	switch role {
	case model.RoleCustomer, model.RoleOperator, model.RoleAdministrator:
	default:
		return booking.Actor{}, false
	}
	if id == "" {
		return booking.Actor{}, false
	}
	return booking.Actor{ID: id, Role: role}, true
}

// writeCoreError maps a structured core error onto an HTTP response.
func writeCoreError(c *gin.Context, err error) {
	var status int
	switch booking.KindOf(err) {
	case booking.KindNotFound:
		status = http.StatusNotFound
	case booking.KindValidation:
		status = http.StatusBadRequest
	case booking.KindUnauthorized:
		status = http.StatusForbidden
	case booking.KindMachineUnavailable, booking.KindSlotConflict, booking.KindInvalidTransition:
		status = http.StatusConflict
	case booking.KindTransientStore:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": err.Error(), "code": string(booking.KindOf(err))}
	var coreErr *booking.Error
	if errors.As(err, &coreErr) && coreErr.Conflict != nil {
		body["conflict"] = coreErr.Conflict
	}
	c.AbortWithStatusJSON(status, body)
}

package booking

import (
	"laundry-booking-backend/internal/model"
)

// Actor is the authenticated party performing an action, threaded explicitly
// through every core call. There is no ambient request user.
type Actor struct {
	ID   string
	Role model.Role
}

// Action names a capability checked by authorize.
type Action string

const (
	ActionCancel Action = "cancel"
	ActionCreate Action = "create"
)

// authorize is the single capability check consumed before each transition.
// ownerID is the owning operator of the resource's laundromat; it may be
// empty when the action does not involve operator ownership.
func authorize(actor Actor, action Action, res *model.Reservation, ownerID string) error {
	switch actor.Role {
	case model.RoleAdministrator:
		return nil
	case model.RoleCustomer:
		if action == ActionCreate {
			return nil
		}
		if res != nil && res.CustomerID == actor.ID {
			return nil
		}
		return errUnauthorized("customers may only cancel their own reservations")
	case model.RoleOperator:
		if action == ActionCreate {
			return errUnauthorized("operators cannot create reservations")
		}
		if ownerID != "" && ownerID == actor.ID {
			return nil
		}
		return errUnauthorized("operators may only cancel reservations on their own machines")
	default:
		return errUnauthorized("unknown actor role")
	}
}

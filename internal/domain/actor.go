package domain

type ActorRole string

const (
	RolePatient   ActorRole = "patient"
	RoleFulfiller ActorRole = "fulfiller"
	RoleSystem    ActorRole = "system"
)

func (r ActorRole) Valid() bool {
	switch r {
	case RolePatient, RoleFulfiller, RoleSystem:
		return true
	}
	return false
}

// Actor identifies who requested a transition. UserID is zero for the system
// actor.
type Actor struct {
	Role   ActorRole
	UserID int64
}

// MayTransition applies the role policy on top of the transition table:
// patients may only cancel, fulfillers advance the fulfillment path, and
// payment confirmation plus the delivery sweep belong to the system.
func (a Actor) MayTransition(to OrderStatus) bool {
	switch a.Role {
	case RolePatient:
		return to == StatusCancelled
	case RoleFulfiller:
		switch to {
		case StatusProcessing, StatusPacked, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled:
			return true
		}
		return false
	case RoleSystem:
		switch to {
		case StatusConfirmed, StatusOutForDelivery, StatusDelivered:
			return true
		}
		return false
	}
	return false
}

package donation

import "donorlift/internal/pickup"

// statusFromPickup maps every pickup status onto the donor-facing status.
// Several pickup states collapse into one donation state: the donor cares
// that a volunteer is working the request, not which leg of the trip they
// are on. The confirmed status is deliberately absent, it can only be set
// through the charity confirmation workflow.
var statusFromPickup = map[pickup.Status]Status{
	pickup.StatusAvailable:       StatusSubmitted,
	pickup.StatusAccepted:        StatusAssigned,
	pickup.StatusEnRoutePickup:   StatusAssigned,
	pickup.StatusArrivedPickup:   StatusAssigned,
	pickup.StatusPickedUp:        StatusPickedUp,
	pickup.StatusEnRouteDelivery: StatusPickedUp,
	pickup.StatusDelivered:       StatusDelivered,
	pickup.StatusCancelled:       StatusCancelled,
}

// ProjectStatus translates a pickup status into the donation status it
// implies. The second return is false for a status outside the known set.
func ProjectStatus(s pickup.Status) (Status, bool) {
	projected, ok := statusFromPickup[s]
	return projected, ok
}

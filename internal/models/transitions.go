package models

// Allowed status moves per entity. A status missing from a map has no
// outgoing transitions.

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCompleted, ReservationCancelled},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled},
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderCompleted, OrderCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentRefunded},
	PaymentPaid:    {PaymentRefunded},
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ActiveReservationStatuses hold a slot.
var ActiveReservationStatuses = []ReservationStatus{ReservationPending, ReservationConfirmed}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCompleted, ReservationCancelled, ReservationExpired:
		return true
	}
	return false
}

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// IsClosed reports whether the reservation accepts no further changes. Expired
// is not terminal in the lifecycle sense but is equally frozen.
func (s ReservationStatus) IsClosed() bool {
	return s.IsTerminal() || s == ReservationExpired
}

func (s ReservationStatus) IsActive() bool { return contains(ActiveReservationStatuses, s) }

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	return contains(reservationTransitions[s], next)
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool { return s == OrderCompleted || s == OrderCancelled }

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return contains(orderTransitions[s], next)
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentRefunded
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return contains(paymentTransitions[s], next)
}

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeout || t == OrderTypeDelivery
}

func (t OrderType) Label() string {
	switch t {
	case OrderTypeDineIn:
		return "Dine-in"
	case OrderTypeTakeout:
		return "Takeout"
	case OrderTypeDelivery:
		return "Delivery"
	}
	return string(t)
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMobile:
		return true
	}
	return false
}

func (s TableStatus) Valid() bool {
	return s == TableStatusAvailable || s == TableStatusOccupied || s == TableStatusReserved
}

package service

import (
	"fmt"

	"booking-service/internal/models"
)

const (
	templateNotification = "notification"
	templateOrderCreated = "order_created"
)

func FormatMoney(cents int64) string {
	return fmt.Sprintf("RD$%d.%02d", cents/100, cents%100)
}

func plainEvent(typ string, u *models.User, subject, title, message string) EmailEvent {
	return EmailEvent{
		Type:     typ,
		To:       u.Email,
		Subject:  subject,
		Template: templateNotification,
		Data: map[string]any{
			"name":    u.Name,
			"title":   title,
			"message": message,
		},
	}
}

func reservationEvent(r *models.Reservation, u *models.User, tableNumber int) EmailEvent {
	when := fmt.Sprintf("%s at %s", r.ReservationDate.Format(DateLayout), r.ReservationTime)
	typ := "reservation." + string(r.Status)
	title := "Reservation " + when

	var subject, msg string
	switch r.Status {
	case models.ReservationPending:
		subject = "We received your reservation"
		msg = fmt.Sprintf("Hi %s,\n\nYour reservation for %d guests on %s at table %d is pending confirmation.\nWe will let you know as soon as it is confirmed.",
			u.Name, r.GuestCount, when, tableNumber)
		typ = "reservation.created"
	case models.ReservationConfirmed:
		subject = "Your reservation is confirmed"
		msg = fmt.Sprintf("Good news, %s.\n\nYour reservation for %d guests on %s is confirmed. Table %d will be waiting for you.",
			u.Name, r.GuestCount, when, tableNumber)
	case models.ReservationCompleted:
		subject = "Thanks for visiting us"
		msg = fmt.Sprintf("Thank you, %s.\n\nYour reservation on %s has been completed. We hope to see you again soon.", u.Name, when)
	case models.ReservationCancelled:
		subject = "Your reservation was cancelled"
		msg = fmt.Sprintf("Hi %s,\n\nYour reservation on %s has been cancelled.\nIf you did not expect this change, please contact us.", u.Name, when)
	case models.ReservationExpired:
		subject = "Your reservation has expired"
		msg = fmt.Sprintf("Hi %s,\n\nYour reservation on %s expired because nobody checked in. You are welcome to book again anytime.", u.Name, when)
	default:
		return EmailEvent{}
	}
	return plainEvent(typ, u, subject, title, msg)
}

// reservationCreatedEvents yields created first, then confirmed for bookings
// an operator confirms on the spot.
func reservationCreatedEvents(r *models.Reservation, u *models.User, tableNumber int) []EmailEvent {
	if r.Status != models.ReservationConfirmed {
		return []EmailEvent{reservationEvent(r, u, tableNumber)}
	}
	when := fmt.Sprintf("%s at %s", r.ReservationDate.Format(DateLayout), r.ReservationTime)
	created := plainEvent("reservation.created", u, "We received your reservation", "Reservation "+when,
		fmt.Sprintf("Hi %s,\n\nYour reservation for %d guests on %s at table %d has been booked.", u.Name, r.GuestCount, when, tableNumber))
	return []EmailEvent{created, reservationEvent(r, u, tableNumber)}
}

type itemLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit_price"`
	Subtotal string `json:"subtotal"`
}

func orderCreatedEvent(o *models.Order, u *models.User, items []itemLine) EmailEvent {
	return EmailEvent{
		Type:     "order.created",
		To:       u.Email,
		Subject:  fmt.Sprintf("Your order %s has been created", o.OrderNumber),
		Template: templateOrderCreated,
		Data: map[string]any{
			"name":         u.Name,
			"order_number": o.OrderNumber,
			"order_type":   o.OrderType.Label(),
			"items":        items,
			"total":        FormatMoney(o.TotalAmountCents),
		},
	}
}

func orderStatusEvent(o *models.Order, u *models.User) EmailEvent {
	num := o.OrderNumber
	var subject, msg string
	switch o.Status {
	case models.OrderConfirmed:
		subject = fmt.Sprintf("Your order %s was confirmed", num)
		msg = fmt.Sprintf("Good news, %s.\n\nYour order %s has been confirmed and is queued for preparation.\n\nWe will let you know when it is ready.", u.Name, num)
	case models.OrderReady:
		subject = fmt.Sprintf("Your order %s is ready", num)
		switch o.OrderType {
		case models.OrderTypeDineIn:
			msg = fmt.Sprintf("Hi %s,\n\nYour order %s is ready and will be brought to your table in a moment.\nIf you need anything else, just let us know.", u.Name, num)
		case models.OrderTypeTakeout:
			msg = fmt.Sprintf("Hi %s,\n\nYour order %s is ready for pickup.\nStop by the counter whenever you like.", u.Name, num)
		case models.OrderTypeDelivery:
			msg = fmt.Sprintf("Hi %s,\n\nYour order %s is ready and will be on its way shortly.\nIt will be at your door soon.", u.Name, num)
		default:
			msg = fmt.Sprintf("Hi %s,\n\nYour order %s is ready.\nThank you for choosing us.", u.Name, num)
		}
	case models.OrderCompleted:
		method := "not specified"
		if o.PaymentMethod != nil {
			method = string(*o.PaymentMethod)
		}
		subject = fmt.Sprintf("Thank you, your order %s was completed", num)
		msg = fmt.Sprintf("Thanks for your visit, %s!\n\nYour order %s has been completed.\n\n- Total: %s\n- Payment method: %s\n\nWe hope to see you again soon.",
			u.Name, num, FormatMoney(o.TotalAmountCents), method)
	case models.OrderCancelled:
		subject = fmt.Sprintf("Your order %s was cancelled", num)
		msg = fmt.Sprintf("Hi %s,\n\nYour order %s has been cancelled.\nIf you did not expect this change, please contact us.", u.Name, num)
	default:
		return EmailEvent{}
	}
	return plainEvent("order."+string(o.Status), u, subject, num, msg)
}

func paymentEvent(o *models.Order, u *models.User) EmailEvent {
	num := o.OrderNumber
	var subject, msg string
	switch o.PaymentStatus {
	case models.PaymentPaid:
		subject = fmt.Sprintf("We received the payment for order %s", num)
		msg = fmt.Sprintf("Hi %s,\n\nWe received your payment of %s for order %s. Thank you!", u.Name, FormatMoney(o.TotalAmountCents), num)
	case models.PaymentRefunded:
		subject = fmt.Sprintf("Your payment for order %s was refunded", num)
		msg = fmt.Sprintf("Hi %s,\n\nThe payment of %s for order %s has been refunded.\nDepending on your bank it may take a few days to show up.", u.Name, FormatMoney(o.TotalAmountCents), num)
	default:
		return EmailEvent{}
	}
	return plainEvent("payment."+string(o.PaymentStatus), u, subject, num, msg)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"booking-service/internal/models"
	"booking-service/internal/repository"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
)

const orderNumberLen = 8

type orderService struct {
	repo         *repository.Repository
	pricing      PricingProvider
	reservations ActiveReservationFinder
	sync         *TableStateSync
	events       EventBus
	clock        Clock
	log          *zap.Logger
}

func NewOrderService(repo *repository.Repository, pricing PricingProvider, reservations ActiveReservationFinder, sync *TableStateSync, events EventBus, clock Clock, log *zap.Logger) OrderService {
	return &orderService{
		repo:         repo,
		pricing:      pricing,
		reservations: reservations,
		sync:         sync,
		events:       events,
		clock:        clock,
		log:          log,
	}
}

func newOrderNumber() (string, error) {
	rng, err := nanorand.Gen(orderNumberLen)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return "ORD-" + strings.ToUpper(rng), nil
}

// occupiedTable reports the table an order keeps occupied: an open dine-in order with a table.
func occupiedTable(o *models.Order) (uuid.UUID, bool) {
	if o.OrderType != models.OrderTypeDineIn || o.TableID == nil || o.Status.IsTerminal() {
		return uuid.Nil, false
	}
	return *o.TableID, true
}

// releaseTable frees the table unless another open dine-in order still sits at it.
func (s *orderService) releaseTable(ctx context.Context, tx *repository.Repository, tableID, orderID uuid.UUID) (uuid.UUID, error) {
	n, err := tx.Orders.CountOpenDineIn(ctx, tableID, orderID)
	if err != nil {
		return uuid.Nil, err
	}
	if n > 0 {
		return uuid.Nil, nil
	}
	return s.sync.SetStatus(ctx, tx.Tables, tableID, models.TableStatusAvailable)
}

func lockActiveTable(ctx context.Context, tx *repository.Repository, id uuid.UUID) (*models.DiningTable, error) {
	table, err := tx.Tables.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	if !table.IsActive {
		return nil, ErrTableInactive
	}
	return table, nil
}

func (s *orderService) Create(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	owner := c.ID
	if !c.IsOperator() {
		if in.Status != nil || in.PaymentStatus != nil || (in.UserID != nil && *in.UserID != c.ID) {
			return nil, ErrOperatorOnly
		}
	} else if in.UserID != nil && *in.UserID != uuid.Nil {
		owner = *in.UserID
	}

	if !in.OrderType.Valid() {
		return nil, ErrInvalidOrderType
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return nil, ErrBadPaymentMethod
	}
	status := models.OrderPending
	if in.Status != nil {
		if !in.Status.Valid() || in.Status.IsTerminal() {
			return nil, fmt.Errorf("%w: %q at creation", ErrInvalidStatus, *in.Status)
		}
		status = *in.Status
	}
	payment := models.PaymentPending
	if in.PaymentStatus != nil {
		if !in.PaymentStatus.Valid() {
			return nil, ErrInvalidPayment
		}
		payment = *in.PaymentStatus
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}

	user, err := s.repo.Catalog.GetUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	lines := make([]PriceLine, len(in.Items))
	for i, it := range in.Items {
		lines[i] = PriceLine{MenuItemID: it.MenuItemID, Quantity: it.Quantity, SpecialNotes: it.SpecialNotes}
	}
	quote, err := s.pricing.Quote(ctx, lines)
	if err != nil {
		return nil, err
	}

	tableID := in.TableID
	var (
		reservationID *uuid.UUID
		autoAssigned  bool
	)
	if in.OrderType == models.OrderTypeDineIn && tableID == nil {
		active, err := s.reservations.GetActiveReservation(ctx, owner, s.clock.Today())
		if err != nil {
			return nil, err
		}
		if active == nil {
			return nil, ErrNeedTable
		}
		tableID, reservationID, autoAssigned = &active.TableID, &active.ID, true
	}

	var (
		order *models.Order
		zone  uuid.UUID
	)
	err = retryOnConstraint(func() error {
		zone = uuid.Nil
		return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
			if tableID != nil {
				if _, err := lockActiveTable(ctx, tx, *tableID); err != nil {
					return err
				}
			}

			number, err := newOrderNumber()
			if err != nil {
				return err
			}
			o := &models.Order{
				OrderNumber:         number,
				UserID:              owner,
				ReservationID:       reservationID,
				TableID:             tableID,
				OrderType:           in.OrderType,
				TotalAmountCents:    quote.TotalCents,
				Status:              status,
				PaymentMethod:       in.PaymentMethod,
				PaymentStatus:       payment,
				SpecialInstructions: in.SpecialInstructions,
			}
			if err := tx.Orders.Create(ctx, o); err != nil {
				return storeErr(err)
			}
			items := quote.Items()
			for i := range items {
				items[i].OrderID = o.ID
			}
			if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
				return storeErr(err)
			}
			if t, ok := occupiedTable(o); ok {
				if zone, err = s.sync.SetStatus(ctx, tx.Tables, t, models.TableStatusOccupied); err != nil {
					return err
				}
			}
			o.Items = items
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.sync.Flush(ctx, zone)
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_cents", order.TotalAmountCents),
		zap.Bool("auto_assigned_table", autoAssigned))

	itemLines := make([]itemLine, len(quote.Lines))
	for i, l := range quote.Lines {
		itemLines[i] = itemLine{
			Name:     l.Name,
			Quantity: l.Item.Quantity,
			Unit:     FormatMoney(l.Item.UnitPriceCents),
			Subtotal: FormatMoney(l.Item.SubtotalCents),
		}
	}
	emit(ctx, s.events, s.log, order.ID.String(), orderCreatedEvent(order, user, itemLines))

	return &CreatedOrder{
		Order: order,
		Summary: OrderSummary{
			OrderNumber:       order.OrderNumber,
			OrderType:         order.OrderType.Label(),
			TotalCents:        order.TotalAmountCents,
			Total:             FormatMoney(order.TotalAmountCents),
			ItemsCount:        len(order.Items),
			UserName:          user.Name,
			TableID:           order.TableID,
			ReservationID:     order.ReservationID,
			AutoAssignedTable: autoAssigned,
		},
	}, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || (!c.IsOperator() && o.UserID != c.ID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !c.IsOperator() {
		f.UserID = &c.ID
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if f.OrderType != nil && !f.OrderType.Valid() {
		return nil, 0, ErrInvalidOrderType
	}
	return s.repo.Orders.List(ctx, repository.OrderListFilter{
		UserID:    f.UserID,
		Status:    f.Status,
		OrderType: f.OrderType,
		Limit:     f.Limit,
		Offset:    f.Offset,
	})
}

func (s *orderService) Update(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, ErrEmptyPatch
	}
	if !c.IsOperator() && (in.UserID != nil || in.Status != nil || in.PaymentStatus != nil) {
		return nil, ErrOperatorOnly
	}
	if in.OrderType != nil && !in.OrderType.Valid() {
		return nil, ErrInvalidOrderType
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return nil, ErrBadPaymentMethod
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, ErrInvalidPayment
	}

	var (
		out            *models.Order
		zones          []uuid.UUID
		statusChanged  bool
		paymentChanged bool
	)
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrOrderNotFound
		}
		if !c.IsOperator() && cur.UserID != c.ID {
			return ErrForbidden
		}
		if cur.Status.IsTerminal() {
			return ErrOrderClosed
		}

		next := *cur
		changes := map[string]any{}

		if in.UserID != nil && *in.UserID != cur.UserID {
			u, err := tx.Catalog.GetUser(ctx, *in.UserID)
			if err != nil {
				return err
			}
			if u == nil {
				return ErrUserNotFound
			}
			next.UserID = u.ID
			changes["user_id"] = u.ID
		}
		if in.OrderType != nil && *in.OrderType != cur.OrderType {
			next.OrderType = *in.OrderType
			changes["order_type"] = next.OrderType
		}
		if in.TableID != nil && (cur.TableID == nil || *in.TableID != *cur.TableID) {
			if _, err := lockActiveTable(ctx, tx, *in.TableID); err != nil {
				return err
			}
			next.TableID = in.TableID
			changes["table_id"] = *in.TableID
			// The linked reservation holds the old table.
			if cur.ReservationID != nil {
				next.ReservationID = nil
				changes["reservation_id"] = nil
			}
		}
		if next.OrderType == models.OrderTypeDineIn && next.TableID == nil {
			return ErrNeedTable
		}
		if in.PaymentMethod != nil && (cur.PaymentMethod == nil || *in.PaymentMethod != *cur.PaymentMethod) {
			next.PaymentMethod = in.PaymentMethod
			changes["payment_method"] = *in.PaymentMethod
		}
		if in.SpecialInstructions != nil &&
			(cur.SpecialInstructions == nil || *in.SpecialInstructions != *cur.SpecialInstructions) {
			changes["special_instructions"] = *in.SpecialInstructions
		}
		if in.Status != nil {
			if *in.Status == cur.Status {
				return ErrRedundantTransition
			}
			if !cur.Status.CanTransitionTo(*in.Status) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, *in.Status)
			}
			next.Status = *in.Status
			changes["status"] = next.Status
			statusChanged = true
		}
		if in.PaymentStatus != nil {
			if *in.PaymentStatus == cur.PaymentStatus {
				return ErrRedundantTransition
			}
			if !cur.PaymentStatus.CanTransitionTo(*in.PaymentStatus) {
				return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, cur.PaymentStatus, *in.PaymentStatus)
			}
			next.PaymentStatus = *in.PaymentStatus
			changes["payment_status"] = next.PaymentStatus
			paymentChanged = true
		}
		if len(changes) == 0 {
			return ErrEmptyPatch
		}

		if err := tx.Orders.Update(ctx, id, changes); err != nil {
			return storeErr(err)
		}

		oldTable, held := occupiedTable(cur)
		newTable, holds := occupiedTable(&next)
		if held && (!holds || oldTable != newTable) {
			zone, err := s.releaseTable(ctx, tx, oldTable, id)
			if err != nil {
				return err
			}
			zones = append(zones, zone)
		}
		if holds && (!held || oldTable != newTable) {
			zone, err := s.sync.SetStatus(ctx, tx.Tables, newTable, models.TableStatusOccupied)
			if err != nil {
				return err
			}
			zones = append(zones, zone)
		}

		out, err = tx.Orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync.Flush(ctx, zones...)
	if statusChanged {
		s.notify(ctx, out, orderStatusEvent)
	}
	if paymentChanged {
		s.notify(ctx, out, paymentEvent)
	}
	return out, nil
}

func (s *orderService) TransitionStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, status, nil)
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	c, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.OrderCancelled, func(o *models.Order) error {
		if !c.IsOperator() && o.UserID != c.ID {
			return ErrForbidden
		}
		return nil
	})
}

func (s *orderService) transition(ctx context.Context, id uuid.UUID, status models.OrderStatus, authorize func(*models.Order) error) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var (
		out  *models.Order
		zone uuid.UUID
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrOrderNotFound
		}
		if authorize != nil {
			if err := authorize(cur); err != nil {
				return err
			}
		}
		if cur.Status.IsTerminal() {
			return ErrOrderClosed
		}
		if cur.Status == status {
			return ErrRedundantTransition
		}
		if !cur.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, status)
		}

		ok, err := tx.Orders.UpdateStatusGuard(ctx, id, cur.Status, status)
		if err != nil {
			return storeErr(err)
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		if t, held := occupiedTable(cur); held && status.IsTerminal() {
			if zone, err = s.releaseTable(ctx, tx, t, id); err != nil {
				return err
			}
		}

		out, err = tx.Orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync.Flush(ctx, zone)
	s.log.Info("order status changed",
		zap.String("order_id", id.String()), zap.String("status", string(status)))
	s.notify(ctx, out, orderStatusEvent)
	return out, nil
}

func (s *orderService) TransitionPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayment, status)
	}

	var out *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrOrderNotFound
		}
		if cur.Status.IsTerminal() {
			return ErrOrderClosed
		}
		if cur.PaymentStatus == status {
			return ErrRedundantTransition
		}
		if !cur.PaymentStatus.CanTransitionTo(status) {
			return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, cur.PaymentStatus, status)
		}

		ok, err := tx.Orders.UpdatePaymentGuard(ctx, id, cur.PaymentStatus, status)
		if err != nil {
			return storeErr(err)
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		out, err = tx.Orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order payment changed",
		zap.String("order_id", id.String()), zap.String("payment_status", string(status)))
	s.notify(ctx, out, paymentEvent)
	return out, nil
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireOperator(ctx); err != nil {
		return err
	}

	var zone uuid.UUID
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrOrderNotFound
		}
		if t, held := occupiedTable(cur); held {
			if zone, err = s.releaseTable(ctx, tx, t, id); err != nil {
				return err
			}
		}
		n, err := tx.Orders.Delete(ctx, id)
		if err != nil {
			return storeErr(err)
		}
		if n == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.sync.Flush(ctx, zone)
	s.log.Info("order deleted", zap.String("order_id", id.String()))
	return nil
}

func (s *orderService) notify(ctx context.Context, o *models.Order, build func(*models.Order, *models.User) EmailEvent) {
	if s.events == nil || o == nil {
		return
	}
	user, err := s.repo.Catalog.GetUser(ctx, o.UserID)
	if err != nil || user == nil {
		s.log.Warn("skip order notification: user lookup failed",
			zap.String("order_id", o.ID.String()), zap.Error(err))
		return
	}
	emit(ctx, s.events, s.log, o.ID.String(), build(o, user))
}

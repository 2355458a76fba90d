package service

import (
	"context"
	"fmt"

	"booking-service/internal/models"

	"github.com/google/uuid"
)

const (
	minQuantity = 1
	maxQuantity = 100
)

type PriceLine struct {
	MenuItemID   uuid.UUID
	Quantity     int
	SpecialNotes *string
}

type QuotedLine struct {
	Name string
	Item models.OrderItem
}

// Quote is a price snapshot: once taken, menu changes no longer affect it.
type Quote struct {
	Lines      []QuotedLine
	TotalCents int64
}

func (q *Quote) Items() []models.OrderItem {
	out := make([]models.OrderItem, len(q.Lines))
	for i, l := range q.Lines {
		out[i] = l.Item
	}
	return out
}

type MenuCatalog interface {
	GetMenuItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error)
}

type PricingProvider interface {
	Quote(ctx context.Context, lines []PriceLine) (*Quote, error)
}

type PricingEngine struct {
	menu MenuCatalog
}

func NewPricingEngine(menu MenuCatalog) *PricingEngine { return &PricingEngine{menu: menu} }

func (p *PricingEngine) Quote(ctx context.Context, lines []PriceLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for i, l := range lines {
		if l.MenuItemID == uuid.Nil {
			return nil, fieldErr(ErrMissingField, fmt.Sprintf("items[%d].menu_item_id", i))
		}
		if l.Quantity < minQuantity || l.Quantity > maxQuantity {
			return nil, fmt.Errorf("%w: items[%d]", ErrQuantityInvalid, i)
		}
		ids = append(ids, l.MenuItemID)
	}

	menu, err := p.menu.GetMenuItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	q := &Quote{Lines: make([]QuotedLine, 0, len(lines))}
	for _, l := range lines {
		m, ok := menu[l.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemNotFound, l.MenuItemID)
		}
		if !m.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemUnavailable, m.Name)
		}
		sub := int64(l.Quantity) * m.PriceCents
		q.TotalCents += sub
		q.Lines = append(q.Lines, QuotedLine{
			Name: m.Name,
			Item: models.OrderItem{
				MenuItemID:     m.ID,
				Quantity:       l.Quantity,
				UnitPriceCents: m.PriceCents,
				SubtotalCents:  sub,
				SpecialNotes:   l.SpecialNotes,
			},
		})
	}
	return q, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusReserved  TableStatus = "reserved"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentMobile   PaymentMethod = "mobile"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

// Catalog entities below are owned by other services; this one only reads them.

type Zone struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Zone) TableName() string { return "zones" }

type DiningTable struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ZoneID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:ux_dining_tables_zone_number" json:"zone_id"`
	TableNumber int         `gorm:"not null;uniqueIndex:ux_dining_tables_zone_number" json:"table_number"`
	Capacity    int         `gorm:"not null" json:"capacity"`
	Status      TableStatus `gorm:"type:text;not null;default:'available';index" json:"status"`
	IsActive    bool        `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DiningTable) TableName() string { return "dining_tables" }

type MenuItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	PriceCents  int64     `gorm:"not null" json:"price_cents"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MenuItem) TableName() string { return "menu_items" }

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Email     string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Role      UserRole  `gorm:"type:text;not null;default:'customer'" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (User) TableName() string { return "users" }

type Reservation struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID              uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ZoneID              uuid.UUID         `gorm:"type:uuid;not null;index" json:"zone_id"`
	TableID             uuid.UUID         `gorm:"type:uuid;not null;index" json:"table_id"`
	ReservationDate     time.Time         `gorm:"type:date;not null" json:"reservation_date"`
	ReservationTime     string            `gorm:"type:varchar(5);not null" json:"reservation_time"` // HH:MM, restaurant local
	GuestCount          int               `gorm:"not null" json:"guest_count"`
	Status              ReservationStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`
	SpecialRequirements *string           `gorm:"type:text" json:"special_requirements,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Reservation) TableName() string { return "reservations" }

type Order struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber         string         `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_number"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ReservationID       *uuid.UUID     `gorm:"type:uuid;index" json:"reservation_id,omitempty"`
	TableID             *uuid.UUID     `gorm:"type:uuid;index" json:"table_id,omitempty"`
	OrderType           OrderType      `gorm:"type:text;not null" json:"order_type"`
	TotalAmountCents    int64          `gorm:"not null;default:0" json:"total_amount_cents"`
	Status              OrderStatus    `gorm:"type:text;not null;default:'pending';index" json:"status"`
	PaymentMethod       *PaymentMethod `gorm:"type:text" json:"payment_method,omitempty"`
	PaymentStatus       PaymentStatus  `gorm:"type:text;not null;default:'pending'" json:"payment_status"`
	SpecialInstructions *string        `gorm:"type:text" json:"special_instructions,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID     uuid.UUID `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"` // snapshot at order creation
	SubtotalCents  int64     `gorm:"not null" json:"subtotal_cents"`
	SpecialNotes   *string   `gorm:"type:text" json:"special_notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

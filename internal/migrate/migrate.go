package migrate

import (
	"context"

	"booking-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto
	CreateChecks           bool
	CreateIndexes          bool // partial unique slot index and lookup indexes
	CreateFKsViaSQL        bool
	CreateUpdatedAtTrigger bool
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

type step struct {
	name string
	sql  string
}

var updatedAtTables = []string{"dining_tables", "menu_items", "reservations", "orders"}

var checkSteps = []step{
	{"chk_dining_tables_capacity", `
ALTER TABLE dining_tables DROP CONSTRAINT IF EXISTS chk_dining_tables_capacity;
ALTER TABLE dining_tables ADD CONSTRAINT chk_dining_tables_capacity CHECK (capacity > 0);`},
	{"chk_dining_tables_status", `
ALTER TABLE dining_tables DROP CONSTRAINT IF EXISTS chk_dining_tables_status;
ALTER TABLE dining_tables ADD CONSTRAINT chk_dining_tables_status
  CHECK (status IN ('available','occupied','reserved'));`},
	{"chk_menu_items_price", `
ALTER TABLE menu_items DROP CONSTRAINT IF EXISTS chk_menu_items_price;
ALTER TABLE menu_items ADD CONSTRAINT chk_menu_items_price CHECK (price_cents >= 0);`},
	{"chk_reservations_guest_count", `
ALTER TABLE reservations DROP CONSTRAINT IF EXISTS chk_reservations_guest_count;
ALTER TABLE reservations ADD CONSTRAINT chk_reservations_guest_count CHECK (guest_count BETWEEN 1 AND 50);`},
	{"chk_reservations_status", `
ALTER TABLE reservations DROP CONSTRAINT IF EXISTS chk_reservations_status;
ALTER TABLE reservations ADD CONSTRAINT chk_reservations_status
  CHECK (status IN ('pending','confirmed','completed','cancelled','expired'));`},
	{"chk_reservations_time_format", `
ALTER TABLE reservations DROP CONSTRAINT IF EXISTS chk_reservations_time_format;
ALTER TABLE reservations ADD CONSTRAINT chk_reservations_time_format
  CHECK (reservation_time ~ '^([01][0-9]|2[0-3]):[0-5][0-9]$');`},
	{"chk_orders_enums", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_enums;
ALTER TABLE orders ADD CONSTRAINT chk_orders_enums CHECK (
  order_type IN ('dine-in','takeout','delivery')
  AND status IN ('pending','confirmed','preparing','ready','completed','cancelled')
  AND payment_status IN ('pending','paid','refunded')
  AND (payment_method IS NULL OR payment_method IN ('cash','card','transfer','mobile')));`},
	{"chk_orders_total", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_total;
ALTER TABLE orders ADD CONSTRAINT chk_orders_total CHECK (total_amount_cents >= 0);`},
	{"chk_order_items_quantity", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_quantity;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity CHECK (quantity BETWEEN 1 AND 100);`},
	{"chk_order_items_subtotal", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_subtotal;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_subtotal
  CHECK (unit_price_cents >= 0 AND subtotal_cents = quantity * unit_price_cents);`},
}

var indexSteps = []step{
	// At most one pending/confirmed reservation per slot.
	{"ux_reservations_active_slot", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_reservations_active_slot
ON reservations (table_id, reservation_date, reservation_time)
WHERE status IN ('pending','confirmed');`},
	{"ix_reservations_user_date", `
CREATE INDEX IF NOT EXISTS ix_reservations_user_date
ON reservations (user_id, reservation_date, reservation_time);`},
	{"ix_reservations_status_date", `
CREATE INDEX IF NOT EXISTS ix_reservations_status_date
ON reservations (status, reservation_date);`},
	{"ix_dining_tables_zone_capacity", `
CREATE INDEX IF NOT EXISTS ix_dining_tables_zone_capacity
ON dining_tables (zone_id, capacity) WHERE is_active;`},
	{"ix_orders_user_created", `
CREATE INDEX IF NOT EXISTS ix_orders_user_created
ON orders (user_id, created_at DESC);`},
	{"ix_orders_table_open", `
CREATE INDEX IF NOT EXISTS ix_orders_table_open
ON orders (table_id) WHERE status NOT IN ('completed','cancelled');`},
}

var fkSteps = []step{
	{"fk_dining_tables_zone", `
ALTER TABLE dining_tables
  DROP CONSTRAINT IF EXISTS fk_dining_tables_zone,
  ADD CONSTRAINT fk_dining_tables_zone FOREIGN KEY (zone_id) REFERENCES zones(id) ON DELETE RESTRICT;`},
	{"fk_reservations_refs", `
ALTER TABLE reservations
  DROP CONSTRAINT IF EXISTS fk_reservations_user,
  DROP CONSTRAINT IF EXISTS fk_reservations_zone,
  DROP CONSTRAINT IF EXISTS fk_reservations_table,
  ADD CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
  ADD CONSTRAINT fk_reservations_zone FOREIGN KEY (zone_id) REFERENCES zones(id) ON DELETE RESTRICT,
  ADD CONSTRAINT fk_reservations_table FOREIGN KEY (table_id) REFERENCES dining_tables(id) ON DELETE RESTRICT;`},
	{"fk_orders_refs", `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_user,
  DROP CONSTRAINT IF EXISTS fk_orders_table,
  DROP CONSTRAINT IF EXISTS fk_orders_reservation,
  ADD CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
  ADD CONSTRAINT fk_orders_table FOREIGN KEY (table_id) REFERENCES dining_tables(id) ON DELETE SET NULL,
  ADD CONSTRAINT fk_orders_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE SET NULL;`},
	{"fk_order_items_refs", `
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  DROP CONSTRAINT IF EXISTS fk_order_items_menu_item,
  ADD CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
  ADD CONSTRAINT fk_order_items_menu_item FOREIGN KEY (menu_item_id) REFERENCES menu_items(id) ON DELETE RESTRICT;`},
}

func runSteps(db *gorm.DB, log *zap.Logger, group string, steps []step) error {
	log.Info("applying "+group, zap.Int("count", len(steps)))
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("migration step failed", zap.String("group", group), zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	log.Info(group + " applied")
	return nil
}

func MigrateBookingDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting booking database migration")
	db = db.WithContext(ctx)

	if opt.CreateExtensions {
		if err := runSteps(db, log, "extensions", []step{
			{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
		}); err != nil {
			return err
		}
	}

	log.Info("creating tables")
	if err := db.AutoMigrate(
		&models.User{},
		&models.Zone{},
		&models.DiningTable{},
		&models.MenuItem{},
		&models.Reservation{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		triggers := []step{{"set_updated_at", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;`}}
		for _, table := range updatedAtTables {
			triggers = append(triggers, step{"trg_" + table + "_updated", `
DROP TRIGGER IF EXISTS trg_` + table + `_updated ON ` + table + `;
CREATE TRIGGER trg_` + table + `_updated
BEFORE UPDATE ON ` + table + `
FOR EACH ROW EXECUTE FUNCTION set_updated_at();`})
		}
		if err := runSteps(db, log, "updated_at triggers", triggers); err != nil {
			return err
		}
	}

	if opt.CreateChecks {
		if err := runSteps(db, log, "check constraints", checkSteps); err != nil {
			return err
		}
	}
	if opt.CreateIndexes {
		if err := runSteps(db, log, "indexes", indexSteps); err != nil {
			return err
		}
	}
	if opt.CreateFKsViaSQL {
		if err := runSteps(db, log, "foreign keys", fkSteps); err != nil {
			return err
		}
	}

	log.Info("booking database migration completed")
	return nil
}

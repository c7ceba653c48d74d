package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage uses; it lets tests plug in
// a pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (Pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type paymentRepository struct {
	storage *Storage
}

type validationRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

func (s *Storage) Validations() repository.ValidationRepository {
	return &validationRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            base_price NUMERIC(12,0) NOT NULL,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id),
            product_id UUID NOT NULL REFERENCES products(id),
            design_plan TEXT NOT NULL,
            status TEXT NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 1,
            design_file_url TEXT,
            validation_status TEXT,
            validation_requested BOOLEAN NOT NULL DEFAULT FALSE,
            designer_id UUID REFERENCES users(id),
            validator_id UUID REFERENCES users(id),
            printshop_id UUID REFERENCES users(id),
            revision_count INTEGER NOT NULL DEFAULT 0,
            max_revisions INTEGER,
            design_price NUMERIC(12,0) NOT NULL DEFAULT 0,
            validation_price NUMERIC(12,0) NOT NULL DEFAULT 0,
            fix_price NUMERIC(12,0) NOT NULL DEFAULT 0,
            print_price NUMERIC(12,0) NOT NULL DEFAULT 0,
            total_price NUMERIC(12,0) NOT NULL,
            tracking_code TEXT,
            shipping_address TEXT,
            customer_notes TEXT,
            accepted_at TIMESTAMPTZ,
            printed_at TIMESTAMPTZ,
            shipped_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            cancelled_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            user_id UUID NOT NULL REFERENCES users(id),
            type TEXT NOT NULL,
            amount NUMERIC(12,0) NOT NULL,
            status TEXT NOT NULL,
            authority TEXT UNIQUE NOT NULL,
            ref_id TEXT,
            card_pan TEXT,
            receipt_image_url TEXT,
            rejection_reason TEXT,
            approved_by UUID REFERENCES users(id),
            approved_at TIMESTAMPTZ,
            paid_at TIMESTAMPTZ,
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS validation_reports (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            validator_id UUID NOT NULL REFERENCES users(id),
            passed BOOLEAN NOT NULL,
            summary TEXT NOT NULL DEFAULT '',
            fix_cost NUMERIC(12,0) NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_order ON validation_reports(order_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.UserRole) (*model.User, error) {
	const query = `INSERT INTO users (id, login, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING created_at`
	u := model.User{ID: uuid.New(), Login: login, PasswordHash: passwordHash, Role: role}
	err := r.storage.pool.QueryRow(ctx, query, u.ID, login, passwordHash, string(role)).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE login=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, login))
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE id=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	u.Role, _ = model.ParseUserRole(role)
	return &u, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) Create(ctx context.Context, name string, basePrice decimal.Decimal) (*model.Product, error) {
	const query = `INSERT INTO products (id, name, base_price) VALUES ($1, $2, $3) RETURNING active, created_at`
	p := model.Product{ID: uuid.New(), Name: name, BasePrice: basePrice}
	if err := r.storage.pool.QueryRow(ctx, query, p.ID, name, basePrice).Scan(&p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	const query = `SELECT id, name, base_price, active, created_at FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.BasePrice, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	const query = `SELECT id, name, base_price, active, created_at FROM products ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.BasePrice, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, product_id, design_plan, status, quantity, design_file_url,
       validation_status, validation_requested, designer_id, validator_id, printshop_id,
       revision_count, max_revisions, design_price, validation_price, fix_price, print_price,
       total_price, tracking_code, shipping_address, customer_notes, accepted_at, printed_at,
       shipped_at, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var plan, status string
	var validationStatus *string
	err := row.Scan(
		&o.ID, &o.UserID, &o.ProductID, &plan, &status, &o.Quantity, &o.DesignFileURL,
		&validationStatus, &o.ValidationRequested, &o.DesignerID, &o.ValidatorID, &o.PrintShopID,
		&o.RevisionCount, &o.MaxRevisions, &o.DesignPrice, &o.ValidationPrice, &o.FixPrice, &o.PrintPrice,
		&o.TotalPrice, &o.TrackingCode, &o.ShippingAddress, &o.CustomerNotes, &o.AcceptedAt, &o.PrintedAt,
		&o.ShippedAt, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	o.DesignPlan, _ = model.ParseDesignPlan(plan)
	o.Status, _ = model.ParseOrderStatus(status)
	if validationStatus != nil {
		if vs, ok := model.ParseValidationStatus(*validationStatus); ok {
			o.ValidationStatus = &vs
		}
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()
	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Create(ctx context.Context, cmd repository.CreateOrder) (*model.Order, error) {
	const query = `INSERT INTO orders (
            id, user_id, product_id, design_plan, status, quantity, design_file_url,
            validation_requested, shipping_address, customer_notes, max_revisions,
            design_price, validation_price, fix_price, print_price, total_price
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING created_at, updated_at`

	order := model.Order{
		ID:                  uuid.New(),
		UserID:              cmd.UserID,
		ProductID:           cmd.ProductID,
		DesignPlan:          cmd.DesignPlan,
		Status:              cmd.Status,
		Quantity:            cmd.Quantity,
		DesignFileURL:       cmd.DesignFileURL,
		ValidationRequested: cmd.ValidationRequested,
		ShippingAddress:     cmd.ShippingAddress,
		CustomerNotes:       cmd.CustomerNotes,
		MaxRevisions:        cmd.MaxRevisions,
		DesignPrice:         cmd.DesignPrice,
		ValidationPrice:     cmd.ValidationPrice,
		FixPrice:            cmd.FixPrice,
		PrintPrice:          cmd.PrintPrice,
		TotalPrice:          cmd.TotalPrice,
	}

	err := r.storage.pool.QueryRow(ctx, query,
		order.ID, cmd.UserID, cmd.ProductID, string(cmd.DesignPlan), string(cmd.Status), cmd.Quantity,
		cmd.DesignFileURL, cmd.ValidationRequested, cmd.ShippingAddress, cmd.CustomerNotes,
		cmd.MaxRevisions, cmd.DesignPrice, cmd.ValidationPrice, cmd.FixPrice, cmd.PrintPrice, cmd.TotalPrice,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func getOrderForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
	return scanOrder(tx.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) ListReadyForPrint(ctx context.Context, limit int) ([]model.Order, error) {
	// FIFO queue for print shops.
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status='READY_FOR_PRINT' ORDER BY created_at ASC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) ListByPrintShop(ctx context.Context, printShopID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE printshop_id=$1 ORDER BY accepted_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, printShopID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, change repository.StatusChange) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := getOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		// The lifecycle only moves forward; in particular nothing returns an
		// order to PENDING, where payment reconciliation would pick it up again.
		if !order.Status.CanBecome(change.Status) {
			return domainErrors.NewInvalidState("order", string(order.Status))
		}

		now := time.Now().UTC()
		query := `UPDATE orders SET status=$1, updated_at=$2`
		args := []any{string(change.Status), now}

		// Each transition stamps only its own timestamp field.
		switch change.Status {
		case model.OrderStatusPrinting:
			query += `, accepted_at=$3`
			args = append(args, now)
		case model.OrderStatusShipped:
			query += `, shipped_at=$3, tracking_code=$4`
			args = append(args, now, change.TrackingCode)
		case model.OrderStatusDelivered:
			query += `, delivered_at=$3`
			args = append(args, now)
		case model.OrderStatusCancelled:
			query += `, cancelled_at=$3`
			args = append(args, now)
		}
		query += fmt.Sprintf(` WHERE id=$%d`, len(args)+1)
		args = append(args, orderID)

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}

		updated, err = scanOrderTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) Cancel(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := getOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Cancellable() {
			return domainErrors.NewInvalidState("order", string(order.Status),
				string(model.OrderStatusPending), string(model.OrderStatusAwaitingValidation),
				string(model.OrderStatusNeedsAction), string(model.OrderStatusDesigning),
				string(model.OrderStatusReadyForPrint))
		}

		now := time.Now().UTC()
		const query = `UPDATE orders SET status='CANCELLED', cancelled_at=$1, updated_at=$1 WHERE id=$2`
		if _, err := tx.Exec(ctx, query, now, orderID); err != nil {
			return err
		}

		updated, err = scanOrderTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) AcceptByPrintShop(ctx context.Context, orderID, printShopID uuid.UUID) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := getOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusReadyForPrint {
			return domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusReadyForPrint))
		}

		now := time.Now().UTC()
		const query = `UPDATE orders SET printshop_id=$1, status='PRINTING', accepted_at=$2, updated_at=$2 WHERE id=$3`
		if _, err := tx.Exec(ctx, query, printShopID, now, orderID); err != nil {
			return err
		}

		updated, err = scanOrderTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) MarkValidationRequested(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := getOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.ValidationRequested {
			return domainErrors.ErrAlreadyExists
		}
		if order.Status != model.OrderStatusPending {
			return domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusPending))
		}

		const query = `UPDATE orders SET validation_requested=TRUE, validation_status='PENDING',
                       status='AWAITING_VALIDATION', updated_at=$1 WHERE id=$2`
		if _, err := tx.Exec(ctx, query, time.Now().UTC(), orderID); err != nil {
			return err
		}

		updated, err = scanOrderTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) SubmitDesign(ctx context.Context, cmd repository.SubmitDesign) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := getOrderForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusDesigning {
			return domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusDesigning))
		}
		// The first submission claims the order for this designer.
		if order.DesignerID != nil && *order.DesignerID != cmd.DesignerID {
			return domainErrors.ErrAccessDenied
		}
		if order.MaxRevisions != nil && order.RevisionCount >= *order.MaxRevisions {
			return domainErrors.ErrRevisionLimit
		}

		now := time.Now().UTC()
		const query = `UPDATE orders SET designer_id=$1, design_file_url=$2, revision_count=revision_count+1,
                       status='PENDING', updated_at=$3 WHERE id=$4`
		if _, err := tx.Exec(ctx, query, cmd.DesignerID, cmd.DesignFileURL, now, cmd.OrderID); err != nil {
			return err
		}

		// An order paid in full while still in design advances immediately.
		if err := r.storage.reconcileOrderTx(ctx, tx, cmd.OrderID, now); err != nil {
			return err
		}

		updated, err = scanOrderTx(ctx, tx, cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func scanOrderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(tx.QueryRow(ctx, query, id))
}

// --- PaymentRepository implementation ---

const paymentColumns = `id, order_id, user_id, type, amount, status, authority, ref_id, card_pan,
       receipt_image_url, rejection_reason, approved_by, approved_at, paid_at, description,
       created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	var paymentType, status string
	err := row.Scan(
		&p.ID, &p.OrderID, &p.UserID, &paymentType, &p.Amount, &status, &p.Authority, &p.RefID, &p.CardPan,
		&p.ReceiptImageURL, &p.RejectionReason, &p.ApprovedBy, &p.ApprovedAt, &p.PaidAt, &p.Description,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	p.Type, _ = model.ParsePaymentType(paymentType)
	p.Status, _ = model.ParsePaymentStatus(status)
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]model.Payment, error) {
	defer rows.Close()
	var result []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *paymentRepository) Create(ctx context.Context, cmd repository.CreatePayment) (*model.Payment, error) {
	const query = `INSERT INTO payments (id, order_id, user_id, type, amount, status, authority, description)
                   VALUES ($1, $2, $3, $4, $5, 'PENDING', $6, $7)
                   RETURNING created_at, updated_at`

	payment := model.Payment{
		ID:          uuid.New(),
		OrderID:     cmd.OrderID,
		UserID:      cmd.UserID,
		Type:        cmd.Type,
		Amount:      cmd.Amount,
		Status:      model.PaymentStatusPending,
		Authority:   cmd.Authority,
		Description: cmd.Description,
	}

	err := r.storage.pool.QueryRow(ctx, query,
		payment.ID, cmd.OrderID, cmd.UserID, string(cmd.Type), cmd.Amount, cmd.Authority, cmd.Description,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	return scanPayment(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *paymentRepository) GetByAuthority(ctx context.Context, authority string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE authority=$1`
	return scanPayment(r.storage.pool.QueryRow(ctx, query, authority))
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *paymentRepository) ListAwaitingApproval(ctx context.Context, limit int) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status='AWAITING_APPROVAL' ORDER BY created_at ASC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *paymentRepository) Summary(ctx context.Context, orderID uuid.UUID) (*model.PaymentSummary, error) {
	const query = `SELECT
            COALESCE(SUM(amount) FILTER (WHERE status='SUCCESS'), 0),
            COALESCE(SUM(amount) FILTER (WHERE status IN ('PENDING','AWAITING_APPROVAL')), 0)
        FROM payments WHERE order_id=$1`
	var summary model.PaymentSummary
	if err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&summary.TotalPaid, &summary.TotalPending); err != nil {
		return nil, err
	}
	return &summary, nil
}

func getPaymentForUpdate(ctx context.Context, tx pgx.Tx, column string, value any) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + column + `=$1 FOR UPDATE`
	return scanPayment(tx.QueryRow(ctx, query, value))
}

func (r *paymentRepository) ApplyCallback(ctx context.Context, authority string, result repository.CallbackResult) (*model.Payment, bool, error) {
	var payment *model.Payment
	var applied bool
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := getPaymentForUpdate(ctx, tx, "authority", authority)
		if err != nil {
			return err
		}

		// Redelivered callbacks observe a settled payment and change nothing.
		if p.Status != model.PaymentStatusPending {
			payment = p
			return nil
		}

		now := time.Now().UTC()
		if result.Success {
			const query = `UPDATE payments SET status='SUCCESS', ref_id=$1, card_pan=$2, paid_at=$3, updated_at=$3 WHERE id=$4`
			if _, err := tx.Exec(ctx, query, result.RefID, result.CardPan, now, p.ID); err != nil {
				return err
			}
			p.Status = model.PaymentStatusSuccess
			p.PaidAt = &now
			if err := r.storage.reconcileOrderTx(ctx, tx, p.OrderID, now); err != nil {
				return err
			}
		} else {
			const query = `UPDATE payments SET status='FAILED', ref_id=$1, card_pan=$2, updated_at=$3 WHERE id=$4`
			if _, err := tx.Exec(ctx, query, result.RefID, result.CardPan, now, p.ID); err != nil {
				return err
			}
			p.Status = model.PaymentStatusFailed
		}

		p.RefID = result.RefID
		p.CardPan = result.CardPan
		p.UpdatedAt = now
		payment = p
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return payment, applied, nil
}

func (r *paymentRepository) AttachReceipt(ctx context.Context, paymentID uuid.UUID, receiptURL string) (*model.Payment, error) {
	var payment *model.Payment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := getPaymentForUpdate(ctx, tx, "id", paymentID)
		if err != nil {
			return err
		}
		if !p.Status.ReceiptUploadable() {
			return domainErrors.NewInvalidState("payment", string(p.Status),
				string(model.PaymentStatusPending), string(model.PaymentStatusFailed),
				string(model.PaymentStatusAwaitingApproval))
		}

		now := time.Now().UTC()
		const query = `UPDATE payments SET status='AWAITING_APPROVAL', receipt_image_url=$1, updated_at=$2 WHERE id=$3`
		if _, err := tx.Exec(ctx, query, receiptURL, now, p.ID); err != nil {
			return err
		}

		p.Status = model.PaymentStatusAwaitingApproval
		p.ReceiptImageURL = &receiptURL
		p.UpdatedAt = now
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error) {
	var payment *model.Payment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := getPaymentForUpdate(ctx, tx, "id", paymentID)
		if err != nil {
			return err
		}
		if p.Status != model.PaymentStatusAwaitingApproval {
			return domainErrors.NewInvalidState("payment", string(p.Status), string(model.PaymentStatusAwaitingApproval))
		}

		now := time.Now().UTC()
		const query = `UPDATE payments SET status='SUCCESS', approved_by=$1, approved_at=$2, paid_at=$2, updated_at=$2 WHERE id=$3`
		if _, err := tx.Exec(ctx, query, adminID, now, p.ID); err != nil {
			return err
		}

		if err := r.storage.reconcileOrderTx(ctx, tx, p.OrderID, now); err != nil {
			return err
		}

		p.Status = model.PaymentStatusSuccess
		p.ApprovedBy = &adminID
		p.ApprovedAt = &now
		p.PaidAt = &now
		p.UpdatedAt = now
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*model.Payment, error) {
	var payment *model.Payment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := getPaymentForUpdate(ctx, tx, "id", paymentID)
		if err != nil {
			return err
		}
		if p.Status != model.PaymentStatusAwaitingApproval {
			return domainErrors.NewInvalidState("payment", string(p.Status), string(model.PaymentStatusAwaitingApproval))
		}

		now := time.Now().UTC()
		const query = `UPDATE payments SET status='FAILED', approved_by=$1, approved_at=$2, rejection_reason=$3, updated_at=$2 WHERE id=$4`
		if _, err := tx.Exec(ctx, query, adminID, now, reason, p.ID); err != nil {
			return err
		}

		p.Status = model.PaymentStatusFailed
		p.ApprovedBy = &adminID
		p.ApprovedAt = &now
		p.RejectionReason = &reason
		p.UpdatedAt = now
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) ResetToPending(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	var payment *model.Payment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := getPaymentForUpdate(ctx, tx, "id", paymentID)
		if err != nil {
			return err
		}
		// A SUCCESS payment is already reconciled and must not re-enter the flow.
		if p.Status == model.PaymentStatusSuccess {
			return domainErrors.NewInvalidState("payment", string(p.Status),
				string(model.PaymentStatusFailed), string(model.PaymentStatusAwaitingApproval))
		}

		now := time.Now().UTC()
		const query = `UPDATE payments SET status='PENDING', receipt_image_url=NULL, rejection_reason=NULL,
                       approved_by=NULL, approved_at=NULL, updated_at=$1 WHERE id=$2`
		if _, err := tx.Exec(ctx, query, now, p.ID); err != nil {
			return err
		}

		p.Status = model.PaymentStatusPending
		p.ReceiptImageURL = nil
		p.RejectionReason = nil
		p.ApprovedBy = nil
		p.ApprovedAt = nil
		p.UpdatedAt = now
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// reconcileOrderTx sums successful payments for the order and advances it out
// of PENDING when the total is covered. Runs in the same transaction as the
// payment write that triggered it; the PENDING guard makes the advance fire at
// most once per order.
func (s *Storage) reconcileOrderTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, now time.Time) error {
	const lockQuery = `SELECT status, validation_requested, total_price FROM orders WHERE id=$1 FOR UPDATE`
	var status string
	var validationRequested bool
	var totalPrice decimal.Decimal
	if err := tx.QueryRow(ctx, lockQuery, orderID).Scan(&status, &validationRequested, &totalPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}

	const sumQuery = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id=$1 AND status='SUCCESS'`
	var totalPaid decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, orderID).Scan(&totalPaid); err != nil {
		return err
	}

	if model.OrderStatus(status) != model.OrderStatusPending || totalPaid.LessThan(totalPrice) {
		return nil
	}

	next := model.OrderStatusReadyForPrint
	if validationRequested {
		next = model.OrderStatusAwaitingValidation
	}

	const updateQuery = `UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`
	if _, err := tx.Exec(ctx, updateQuery, string(next), now, orderID); err != nil {
		return err
	}
	return nil
}

// --- ValidationRepository implementation ---

func (r *validationRepository) SubmitReport(ctx context.Context, cmd repository.SubmitReport) (*model.ValidationReport, error) {
	var report *model.ValidationReport
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := getOrderForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusAwaitingValidation {
			return domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusAwaitingValidation))
		}

		rep := model.ValidationReport{
			ID:          uuid.New(),
			OrderID:     cmd.OrderID,
			ValidatorID: cmd.ValidatorID,
			Passed:      cmd.Passed,
			Summary:     cmd.Summary,
			FixCost:     cmd.FixCost,
		}
		const insertQuery = `INSERT INTO validation_reports (id, order_id, validator_id, passed, summary, fix_cost)
                             VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
		if err := tx.QueryRow(ctx, insertQuery, rep.ID, cmd.OrderID, cmd.ValidatorID, cmd.Passed, cmd.Summary, cmd.FixCost).Scan(&rep.CreatedAt); err != nil {
			return err
		}

		now := time.Now().UTC()
		validationStatus := model.ValidationStatusPassed
		orderStatus := model.OrderStatusReadyForPrint
		if !cmd.Passed {
			validationStatus = model.ValidationStatusFailed
			orderStatus = model.OrderStatusNeedsAction
		}

		const updateQuery = `UPDATE orders SET validator_id=$1, validation_status=$2, status=$3, updated_at=$4 WHERE id=$5`
		if _, err := tx.Exec(ctx, updateQuery, cmd.ValidatorID, string(validationStatus), string(orderStatus), now, cmd.OrderID); err != nil {
			return err
		}

		// A failed validation with a quoted fix grows the order total; the fix
		// is collected through a follow-up FIX payment.
		if !cmd.Passed && cmd.FixCost.IsPositive() {
			const priceQuery = `UPDATE orders SET fix_price=fix_price+$1, total_price=total_price+$1, updated_at=$2 WHERE id=$3`
			if _, err := tx.Exec(ctx, priceQuery, cmd.FixCost, now, cmd.OrderID); err != nil {
				return err
			}
		}

		report = &rep
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *validationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.ValidationReport, error) {
	const query = `SELECT id, order_id, validator_id, passed, summary, fix_cost, created_at
                   FROM validation_reports WHERE order_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ValidationReport
	for rows.Next() {
		var rep model.ValidationReport
		if err := rows.Scan(&rep.ID, &rep.OrderID, &rep.ValidatorID, &rep.Passed, &rep.Summary, &rep.FixCost, &rep.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu    sync.Mutex
	Users map[string]*model.User
	ByID  map[uuid.UUID]*model.User
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[uuid.UUID]*model.User),
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.UserRole) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user := &model.User{ID: uuid.New(), Login: login, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now().UTC()}
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Seed inserts a user with the given role and returns it.
func (s *UserRepositoryStub) Seed(login string, role model.UserRole) *model.User {
	user, _ := s.Create(context.Background(), login, "hash:"+login, role)
	return user
}

// ProductRepositoryStub stores catalog products in-memory.
type ProductRepositoryStub struct {
	mu       sync.Mutex
	Products map[uuid.UUID]*model.Product
}

// NewProductRepositoryStub constructs stub repository.
func NewProductRepositoryStub() *ProductRepositoryStub {
	return &ProductRepositoryStub{Products: make(map[uuid.UUID]*model.Product)}
}

// Create stores a product; new products are active.
func (s *ProductRepositoryStub) Create(ctx context.Context, name string, basePrice decimal.Decimal) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product := &model.Product{ID: uuid.New(), Name: name, BasePrice: basePrice, Active: true, CreatedAt: time.Now().UTC()}
	s.Products[product.ID] = product
	return product, nil
}

// Seed inserts a product with explicit activity flag.
func (s *ProductRepositoryStub) Seed(name string, basePrice decimal.Decimal, active bool) *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product := &model.Product{ID: uuid.New(), Name: name, BasePrice: basePrice, Active: active, CreatedAt: time.Now().UTC()}
	s.Products[product.ID] = product
	return product
}

// GetByID fetches product or returns not found.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product, ok := s.Products[id]; ok {
		return product, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns all stored products.
func (s *ProductRepositoryStub) List(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]model.Product, 0, len(s.Products))
	for _, p := range s.Products {
		list = append(list, *p)
	}
	return list, nil
}

// MemoryLedger is a shared in-memory ledger backing the order, payment and
// validation repository stubs. It enforces the same transition guards as the
// SQL store so use case tests exercise real invariants.
type MemoryLedger struct {
	mu       sync.Mutex
	Orders   map[uuid.UUID]*model.Order
	Payments map[uuid.UUID]*model.Payment
	Reports  map[uuid.UUID]*model.ValidationReport
}

// NewMemoryLedger constructs the shared ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		Orders:   make(map[uuid.UUID]*model.Order),
		Payments: make(map[uuid.UUID]*model.Payment),
		Reports:  make(map[uuid.UUID]*model.ValidationReport),
	}
}

// OrderRepo returns the order view over the ledger.
func (l *MemoryLedger) OrderRepo() repository.OrderRepository { return &memoryOrderRepo{l} }

// PaymentRepo returns the payment view over the ledger.
func (l *MemoryLedger) PaymentRepo() repository.PaymentRepository { return &memoryPaymentRepo{l} }

// ValidationRepo returns the validation view over the ledger.
func (l *MemoryLedger) ValidationRepo() repository.ValidationRepository {
	return &memoryValidationRepo{l}
}

// reconcile advances a fully paid PENDING order, at most once.
func (l *MemoryLedger) reconcile(orderID uuid.UUID) {
	order, ok := l.Orders[orderID]
	if !ok || order.Status != model.OrderStatusPending {
		return
	}
	totalPaid := decimal.Zero
	for _, p := range l.Payments {
		if p.OrderID == orderID && p.Status == model.PaymentStatusSuccess {
			totalPaid = totalPaid.Add(p.Amount)
		}
	}
	if totalPaid.GreaterThanOrEqual(order.TotalPrice) {
		order.Status = order.NextStatusWhenPaid()
		order.UpdatedAt = time.Now().UTC()
	}
}

type memoryOrderRepo struct{ l *MemoryLedger }

func (r *memoryOrderRepo) Create(ctx context.Context, cmd repository.CreateOrder) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	now := time.Now().UTC()
	order := &model.Order{
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
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	r.l.Orders[order.ID] = order
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var list []model.Order
	for _, o := range r.l.Orders {
		if o.UserID == userID {
			list = append(list, *o)
		}
	}
	sortOrders(list)
	return list, nil
}

func (r *memoryOrderRepo) ListReadyForPrint(ctx context.Context, limit int) ([]model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var list []model.Order
	for _, o := range r.l.Orders {
		if o.Status == model.OrderStatusReadyForPrint {
			list = append(list, *o)
		}
	}
	sortOrders(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *memoryOrderRepo) ListByPrintShop(ctx context.Context, printShopID uuid.UUID) ([]model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var list []model.Order
	for _, o := range r.l.Orders {
		if o.PrintShopID != nil && *o.PrintShopID == printShopID {
			list = append(list, *o)
		}
	}
	sortOrders(list)
	return list, nil
}

func (r *memoryOrderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, change repository.StatusChange) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !order.Status.CanBecome(change.Status) {
		return nil, domainErrors.NewInvalidState("order", string(order.Status))
	}
	now := time.Now().UTC()
	order.Status = change.Status
	order.UpdatedAt = now
	switch change.Status {
	case model.OrderStatusPrinting:
		order.AcceptedAt = &now
	case model.OrderStatusShipped:
		order.ShippedAt = &now
		order.TrackingCode = change.TrackingCode
	case model.OrderStatusDelivered:
		order.DeliveredAt = &now
	case model.OrderStatusCancelled:
		order.CancelledAt = &now
	}
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) Cancel(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !order.Status.Cancellable() {
		return nil, domainErrors.NewInvalidState("order", string(order.Status))
	}
	now := time.Now().UTC()
	order.Status = model.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) AcceptByPrintShop(ctx context.Context, orderID, printShopID uuid.UUID) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusReadyForPrint {
		return nil, domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusReadyForPrint))
	}
	now := time.Now().UTC()
	order.Status = model.OrderStatusPrinting
	order.PrintShopID = &printShopID
	order.AcceptedAt = &now
	order.UpdatedAt = now
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) SubmitDesign(ctx context.Context, cmd repository.SubmitDesign) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[cmd.OrderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusDesigning {
		return nil, domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusDesigning))
	}
	if order.DesignerID != nil && *order.DesignerID != cmd.DesignerID {
		return nil, domainErrors.ErrAccessDenied
	}
	if order.MaxRevisions != nil && order.RevisionCount >= *order.MaxRevisions {
		return nil, domainErrors.ErrRevisionLimit
	}
	now := time.Now().UTC()
	designerID := cmd.DesignerID
	fileURL := cmd.DesignFileURL
	order.DesignerID = &designerID
	order.DesignFileURL = &fileURL
	order.RevisionCount++
	order.Status = model.OrderStatusPending
	order.UpdatedAt = now
	r.l.reconcile(cmd.OrderID)
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) MarkValidationRequested(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.ValidationRequested {
		return nil, domainErrors.ErrAlreadyExists
	}
	if order.Status != model.OrderStatusPending {
		return nil, domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusPending))
	}
	pending := model.ValidationStatusPending
	order.ValidationRequested = true
	order.ValidationStatus = &pending
	order.Status = model.OrderStatusAwaitingValidation
	order.UpdatedAt = time.Now().UTC()
	copied := *order
	return &copied, nil
}

type memoryPaymentRepo struct{ l *MemoryLedger }

func (r *memoryPaymentRepo) Create(ctx context.Context, cmd repository.CreatePayment) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	now := time.Now().UTC()
	payment := &model.Payment{
		ID:          uuid.New(),
		OrderID:     cmd.OrderID,
		UserID:      cmd.UserID,
		Type:        cmd.Type,
		Amount:      cmd.Amount,
		Status:      model.PaymentStatusPending,
		Authority:   cmd.Authority,
		Description: cmd.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.l.Payments[payment.ID] = payment
	copied := *payment
	return &copied, nil
}

func (r *memoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment, ok := r.l.Payments[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (r *memoryPaymentRepo) GetByAuthority(ctx context.Context, authority string) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment := r.findByAuthority(authority)
	if payment == nil {
		return nil, domainErrors.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (r *memoryPaymentRepo) findByAuthority(authority string) *model.Payment {
	for _, p := range r.l.Payments {
		if p.Authority == authority {
			return p
		}
	}
	return nil
}

func (r *memoryPaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var list []model.Payment
	for _, p := range r.l.Payments {
		if p.OrderID == orderID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *memoryPaymentRepo) ListAwaitingApproval(ctx context.Context, limit int) ([]model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var list []model.Payment
	for _, p := range r.l.Payments {
		if p.Status == model.PaymentStatusAwaitingApproval {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *memoryPaymentRepo) Summary(ctx context.Context, orderID uuid.UUID) (*model.PaymentSummary, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	summary := &model.PaymentSummary{TotalPaid: decimal.Zero, TotalPending: decimal.Zero}
	for _, p := range r.l.Payments {
		if p.OrderID != orderID {
			continue
		}
		switch p.Status {
		case model.PaymentStatusSuccess:
			summary.TotalPaid = summary.TotalPaid.Add(p.Amount)
		case model.PaymentStatusPending, model.PaymentStatusAwaitingApproval:
			summary.TotalPending = summary.TotalPending.Add(p.Amount)
		}
	}
	return summary, nil
}

func (r *memoryPaymentRepo) ApplyCallback(ctx context.Context, authority string, result repository.CallbackResult) (*model.Payment, bool, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment := r.findByAuthority(authority)
	if payment == nil {
		return nil, false, domainErrors.ErrNotFound
	}
	if payment.Status != model.PaymentStatusPending {
		copied := *payment
		return &copied, false, nil
	}
	now := time.Now().UTC()
	if result.Success {
		payment.Status = model.PaymentStatusSuccess
		payment.RefID = result.RefID
		payment.CardPan = result.CardPan
		payment.PaidAt = &now
		r.l.reconcile(payment.OrderID)
	} else {
		payment.Status = model.PaymentStatusFailed
	}
	payment.UpdatedAt = now
	copied := *payment
	return &copied, true, nil
}

func (r *memoryPaymentRepo) AttachReceipt(ctx context.Context, paymentID uuid.UUID, receiptURL string) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment, ok := r.l.Payments[paymentID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !payment.Status.ReceiptUploadable() {
		return nil, domainErrors.NewInvalidState("payment", string(payment.Status))
	}
	payment.ReceiptImageURL = &receiptURL
	payment.Status = model.PaymentStatusAwaitingApproval
	payment.UpdatedAt = time.Now().UTC()
	copied := *payment
	return &copied, nil
}

func (r *memoryPaymentRepo) Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment, ok := r.l.Payments[paymentID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if payment.Status != model.PaymentStatusAwaitingApproval {
		return nil, domainErrors.NewInvalidState("payment", string(payment.Status), string(model.PaymentStatusAwaitingApproval))
	}
	now := time.Now().UTC()
	payment.Status = model.PaymentStatusSuccess
	payment.ApprovedBy = &adminID
	payment.ApprovedAt = &now
	payment.PaidAt = &now
	payment.UpdatedAt = now
	r.l.reconcile(payment.OrderID)
	copied := *payment
	return &copied, nil
}

func (r *memoryPaymentRepo) Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment, ok := r.l.Payments[paymentID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if payment.Status != model.PaymentStatusAwaitingApproval {
		return nil, domainErrors.NewInvalidState("payment", string(payment.Status), string(model.PaymentStatusAwaitingApproval))
	}
	now := time.Now().UTC()
	payment.Status = model.PaymentStatusFailed
	payment.RejectionReason = &reason
	payment.ApprovedBy = &adminID
	payment.UpdatedAt = now
	copied := *payment
	return &copied, nil
}

func (r *memoryPaymentRepo) ResetToPending(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	payment, ok := r.l.Payments[paymentID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if payment.Status == model.PaymentStatusSuccess {
		return nil, domainErrors.NewInvalidState("payment", string(payment.Status))
	}
	payment.Status = model.PaymentStatusPending
	payment.ReceiptImageURL = nil
	payment.RejectionReason = nil
	payment.ApprovedBy = nil
	payment.ApprovedAt = nil
	payment.UpdatedAt = time.Now().UTC()
	copied := *payment
	return &copied, nil
}

type memoryValidationRepo struct{ l *MemoryLedger }

func (r *memoryValidationRepo) SubmitReport(ctx context.Context, cmd repository.SubmitReport) (*model.ValidationReport, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	order, ok := r.l.Orders[cmd.OrderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusAwaitingValidation {
		return nil, domainErrors.NewInvalidState("order", string(order.Status), string(model.OrderStatusAwaitingValidation))
	}
	now := time.Now().UTC()
	report := &model.ValidationReport{
		ID:          uuid.New(),
		OrderID:     cmd.OrderID,
		ValidatorID: cmd.ValidatorID,
		Passed:      cmd.Passed,
		Summary:     cmd.Summary,
		FixCost:     cmd.FixCost,
		CreatedAt:   now,
	}
	r.l.Reports[report.ID] = report

	order.ValidatorID = &cmd.ValidatorID
	if cmd.Passed {
		passed := model.ValidationStatusPassed
		order.ValidationStatus = &passed
		order.Status = model.OrderStatusReadyForPrint
	} else {
		failed := model.ValidationStatusFailed
		order.ValidationStatus = &failed
		order.Status = model.OrderStatusNeedsAction
		if cmd.FixCost.IsPositive() {
			order.FixPrice = order.FixPrice.Add(cmd.FixCost)
			order.TotalPrice = order.TotalPrice.Add(cmd.FixCost)
		}
	}
	order.UpdatedAt = now
	copied := *report
	return &copied, nil
}

func (r *memoryValidationRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.ValidationReport, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var list []model.ValidationReport
	for _, rep := range r.l.Reports {
		if rep.OrderID == orderID {
			list = append(list, *rep)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func sortOrders(list []model.Order) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
}

var (
	_ repository.UserRepository    = (*UserRepositoryStub)(nil)
	_ repository.ProductRepository = (*ProductRepositoryStub)(nil)
)

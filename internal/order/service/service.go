package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/actorcontext"
	catalogdomain "github.com/floorops/floorops/internal/catalog/domain"
	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/order/domain"
	logdomain "github.com/floorops/floorops/internal/orderlog/domain"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
	pkgdb "github.com/floorops/floorops/pkg/db"
)

type Params struct {
	fx.In
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	TableRepo   tabledomain.Repository
	CatalogRepo catalogdomain.Repository
	LogRepo     logdomain.Repository
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	tableRepo   tabledomain.Repository
	catalogRepo catalogdomain.Repository
	logRepo     logdomain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		tableRepo:   p.TableRepo,
		catalogRepo: p.CatalogRepo,
		logRepo:     p.LogRepo,
	}
}

func (s *service) EnsureOpenOrder(ctx context.Context, tableID snowflake.ID) (snowflake.ID, error) {
	var orderID snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := s.EnsureOpenOrderInTx(ctx, tx, tableID)
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// EnsureOpenOrderInTx locks the table row, then finds or creates the
// open order for it. A concurrent creator losing the unique-index race
// re-reads and adopts the winner's order instead of failing.
func (s *service) EnsureOpenOrderInTx(ctx context.Context, tx *gorm.DB, tableID snowflake.ID) (snowflake.ID, error) {
	table, err := s.tableRepo.LockByID(ctx, tx, tableID)
	if err != nil {
		return 0, err
	}
	if table == nil {
		return 0, tabledomain.ErrTableNotFound
	}
	if !table.Active {
		return 0, tabledomain.ErrTableInactive
	}

	existing, err := s.repo.FindOpenByTable(ctx, tx, tableID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if _, err := s.tableRepo.SetState(ctx, tx, tableID, tabledomain.StateOccupied); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	order := &domain.Order{
		ID:       s.genID.Generate(),
		TableID:  tableID,
		Status:   domain.StatusOpen,
		OpenedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, tx, order); err != nil {
		if !pkgdb.IsDuplicateKeyErr(err) {
			return 0, err
		}
		winner, ferr := s.repo.FindOpenByTable(ctx, tx, tableID)
		if ferr != nil {
			return 0, ferr
		}
		if winner == nil {
			return 0, err
		}
		order = winner
	}

	if _, err := s.tableRepo.SetState(ctx, tx, tableID, tabledomain.StateOccupied); err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (s *service) OpenOrderID(ctx context.Context, tableID snowflake.ID) (snowflake.ID, error) {
	order, err := s.repo.FindOpenByTable(ctx, s.db, tableID)
	if err != nil {
		return 0, err
	}
	if order == nil {
		return 0, domain.ErrNoOpenOrder
	}
	return order.ID, nil
}

// mergeCart sums duplicate product ids while preserving first-seen
// order, and rejects non-positive quantities.
func mergeCart(items []domain.CartItem) ([]domain.CartItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	index := make(map[snowflake.ID]int, len(items))
	merged := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if item.ProductID == 0 {
			return nil, domain.ErrProductNotFound
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func (s *service) SubmitCart(ctx context.Context, orderID snowflake.ID, items []domain.CartItem) (*domain.Order, error) {
	merged, err := mergeCart(items)
	if err != nil {
		return nil, err
	}

	var result *domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.LockByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.StatusOpen {
			return domain.ErrOrderClosed
		}

		ids := make([]snowflake.ID, 0, len(merged))
		for _, line := range merged {
			ids = append(ids, line.ProductID)
		}
		products, err := s.catalogRepo.LockByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[snowflake.ID]catalogdomain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// Pre-check every line before touching anything so a short
		// line fails the submission with no partial effect.
		for _, line := range merged {
			product, ok := byID[line.ProductID]
			if !ok {
				return domain.ErrProductNotFound
			}
			if product.Stock < line.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Stock:       product.Stock,
					Requested:   line.Quantity,
				}
			}
		}

		for _, line := range merged {
			product := byID[line.ProductID]
			item := &domain.OrderItem{
				ID:        s.genID.Generate(),
				OrderID:   orderID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				LineTotal: int64(line.Quantity) * product.Price,
				Status:    domain.ItemPending,
			}
			if err := s.repo.UpsertItem(ctx, tx, item); err != nil {
				return err
			}
			ok, err := s.catalogRepo.DecrementStock(ctx, tx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Stock:       product.Stock,
					Requested:   line.Quantity,
				}
			}
		}

		if err := s.recalcTotals(ctx, tx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recalcTotals is the single writer of subtotal/discount/total.
func (s *service) recalcTotals(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	subtotal, err := s.repo.SumLineTotals(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	discount := domain.DiscountAmount(subtotal, order.DiscountRate)
	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	if err := s.repo.UpdateTotals(ctx, tx, order.ID, subtotal, discount, total); err != nil {
		return err
	}
	order.Subtotal = subtotal
	order.DiscountAmount = discount
	order.Total = total
	return nil
}

func (s *service) UpdateDiscountRate(ctx context.Context, orderID snowflake.ID, rate float64) (*domain.Order, error) {
	if rate < 0 || rate > 100 {
		return nil, domain.ErrInvalidDiscountRate
	}

	var result *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.LockByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.StatusOpen {
			return domain.ErrOrderClosed
		}

		oldRate := order.DiscountRate
		if err := s.repo.UpdateDiscountRate(ctx, tx, orderID, rate); err != nil {
			return err
		}
		order.DiscountRate = rate
		if err := s.recalcTotals(ctx, tx, order); err != nil {
			return err
		}

		oldVal := domain.FormatRate(oldRate)
		newVal := domain.FormatRate(rate)
		if err := s.appendLog(ctx, tx, orderID, logdomain.ActionDiscount, &oldVal, &newVal); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CloseWithPayment is idempotent under retries and races. Three guards
// stack: the status read, the unique payment insert, and the
// conditional close. Any of them tripping means another request got
// there first, and the caller still sees success.
func (s *service) CloseWithPayment(ctx context.Context, orderID snowflake.ID, method domain.PaymentMethod) (*domain.CloseResult, error) {
	if !method.Valid() {
		return nil, domain.ErrUnknownPaymentMethod
	}

	var result *domain.CloseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.LockByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.StatusOpen {
			result = alreadyClosed(orderID, order.Total)
			return nil
		}

		payment := &domain.Payment{
			ID:         s.genID.Generate(),
			OrderID:    orderID,
			Amount:     order.Total,
			Method:     method,
			ReceivedAt: s.clock.Now(),
		}
		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				result = alreadyClosed(orderID, order.Total)
				return nil
			}
			return err
		}

		closedBy := closingStaff(ctx)
		closed, err := s.repo.CloseIfOpen(ctx, tx, orderID, closedBy)
		if err != nil {
			return err
		}
		if !closed {
			result = alreadyClosed(orderID, order.Total)
			return nil
		}

		if _, err := s.tableRepo.SetState(ctx, tx, order.TableID, tabledomain.StateEmpty); err != nil {
			return err
		}

		paymentVal := fmt.Sprintf("method=%s;amount=%s", method, domain.FormatAmount(order.Total))
		if err := s.appendLog(ctx, tx, orderID, logdomain.ActionPayment, nil, &paymentVal); err != nil {
			return err
		}
		oldStatus, newStatus := "open", "closed"
		if err := s.appendLog(ctx, tx, orderID, logdomain.ActionClose, &oldStatus, &newStatus); err != nil {
			return err
		}

		result = &domain.CloseResult{
			OrderID: orderID,
			Amount:  order.Total,
			Message: "order closed",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func alreadyClosed(orderID snowflake.ID, total int64) *domain.CloseResult {
	return &domain.CloseResult{
		OrderID:       orderID,
		AlreadyClosed: true,
		Amount:        total,
		Message:       "order already closed and paid",
	}
}

func closingStaff(ctx context.Context) *snowflake.ID {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok || actor.StaffID == 0 {
		return nil
	}
	id := actor.StaffID
	return &id
}

func (s *service) appendLog(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, action string, oldVal, newVal *string) error {
	var actor *string
	if name := actorcontext.Username(ctx); name != "" {
		actor = &name
	}
	return s.logRepo.Append(ctx, tx, &logdomain.Entry{
		ID:        s.genID.Generate(),
		OrderID:   orderID,
		Action:    action,
		OldValue:  oldVal,
		NewValue:  newVal,
		Actor:     actor,
		CreatedAt: s.clock.Now(),
	})
}

func (s *service) Ticket(ctx context.Context, orderID snowflake.ID) (*domain.Ticket, error) {
	ticket, err := s.repo.Ticket(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrOrderNotFound
	}
	return ticket, nil
}

func (s *service) History(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryRow, error) {
	return s.repo.History(ctx, s.db, filter)
}

func (s *service) Detail(ctx context.Context, orderID snowflake.ID) (*domain.Detail, error) {
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	lines, err := s.repo.TicketLines(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	payment, err := s.repo.FindPaymentByOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	return &domain.Detail{Order: *order, Lines: lines, Payment: payment}, nil
}

package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"
	"github.com/onton-events/settler/src/utils/model"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"
	"github.com/onton-events/settler/src/utils/society"
	"github.com/onton-events/settler/src/utils/telegram"
	"github.com/onton-events/settler/src/utils/ton"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TicketMinter requests a CSBT ticket mint from the society platform
type TicketMinter interface {
	MintTicket(ctx context.Context, req *society.MintTicketRequest) (out *society.MintTicketResponse, err error)
}

// TransactionReader looks a payment transaction up on chain
type TransactionReader interface {
	GetTransaction(ctx context.Context, hash string) (out *ton.Transaction, err error)
}

// Settler settles paid ticket orders. The chain monitor flips created
// orders to mint_request once their payment message is sent; this job
// picks mint_request orders up, confirms the payment transaction on
// chain and drives the order to minted, with failed and
// validation_failed as the terminal parking states. Side effects of a
// settled order (ticket row, used coupon, affiliate purchase counter)
// commit in the same transaction as the state flip.
type Settler struct {
	config  *config.Config
	db      *gorm.DB
	chain   TransactionReader
	society TicketMinter
	noticer telegram.Noticer
	monitor *monitor_settler.Monitor
	log     *logrus.Entry
}

func NewSettler(config *config.Config) (self *Settler) {
	self = new(Settler)
	self.config = config
	self.log = logger.NewSublogger("order-settler")
	return
}

func (self *Settler) WithDB(db *gorm.DB) *Settler {
	self.db = db
	return self
}

func (self *Settler) WithChain(chain TransactionReader) *Settler {
	self.chain = chain
	return self
}

func (self *Settler) WithSociety(society TicketMinter) *Settler {
	self.society = society
	return self
}

func (self *Settler) WithNoticer(noticer telegram.Noticer) *Settler {
	self.noticer = noticer
	return self
}

func (self *Settler) WithMonitor(monitor *monitor_settler.Monitor) *Settler {
	self.monitor = monitor
	return self
}

func (self *Settler) Run(ctx context.Context) (err error) {
	offset := 0
	for {
		var orders []model.Order
		orders, err = self.selectBatch(ctx, offset)
		if err != nil {
			return
		}
		if len(orders) == 0 {
			return nil
		}

		for i := range orders {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			self.settleOrder(ctx, &orders[i])
		}

		if len(orders) < self.config.Orders.BatchSize {
			return nil
		}
		offset += len(orders)
	}
}

// selectBatch pages through orders waiting in mint_request. Rows stay
// there until their payment transaction confirms, so an unconfirmed
// order is picked up again on the next tick.
func (self *Settler) selectBatch(ctx context.Context, offset int) (orders []model.Order, err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableOrders).
		Where("state = ? AND order_type = ?", model.OrderStateMintRequest, model.OrderTypeCsbtTicket).
		Order("created_at ASC").
		Offset(offset).
		Limit(self.config.Orders.BatchSize).
		Find(&orders).Error
	if err != nil {
		self.monitor.Report.Orders.Errors.SettlementFailures.Inc()
		self.log.WithError(err).Error("Failed to select orders")
	}
	return
}

type confirmation int

const (
	confirmPending confirmation = iota
	confirmOK
	confirmFailed
)

// confirmTransaction checks the order's payment transaction on chain.
// A transaction not found yet is pending, one that aborted or failed
// can never settle.
func (self *Settler) confirmTransaction(ctx context.Context, order *model.Order) (result confirmation, err error) {
	if !order.TrxHash.Valid || order.TrxHash.String == "" {
		// A mint_request without a transaction hash can never confirm
		return confirmFailed, nil
	}

	trx, err := self.chain.GetTransaction(ctx, order.TrxHash.String)
	if err == ton.ErrNotFound {
		return confirmPending, nil
	}
	if err != nil {
		return confirmPending, err
	}

	if trx.Aborted || !trx.Success {
		return confirmFailed, nil
	}
	return confirmOK, nil
}

// settleOrder handles one mint_request order. A per-order failure
// parks the row and never stops the batch.
func (self *Settler) settleOrder(ctx context.Context, order *model.Order) {
	log := self.log.WithField("orderUuid", order.Uuid.String())

	confirmed, err := self.confirmTransaction(ctx, order)
	if err != nil {
		// Transient chain error, the row stays in mint_request
		self.monitor.Report.Orders.Errors.SettlementFailures.Inc()
		log.WithError(err).Error("Failed to check payment transaction")
		return
	}
	switch confirmed {
	case confirmPending:
		log.Debug("Payment transaction not confirmed yet, leaving order for the next run")
		return
	case confirmFailed:
		self.park(ctx, order, model.OrderStateFailed)
		self.monitor.Report.Orders.Errors.SettlementFailures.Inc()
		log.Warn("Payment transaction failed on chain, parking order")
		return
	}

	if !order.OwnerAddress.Valid || !ton.IsValidAddress(order.OwnerAddress.String) {
		self.park(ctx, order, model.OrderStateValidationFailed)
		self.monitor.Report.Orders.Errors.ValidationFailures.Inc()
		log.Warn("Order has no valid owner address, parking")
		return
	}

	payment, err := self.findTicketPayment(ctx, order)
	if err != nil {
		self.park(ctx, order, model.OrderStateFailed)
		self.monitor.Report.Orders.Errors.SettlementFailures.Inc()
		log.WithError(err).Error("Failed to resolve ticket payment for order")
		return
	}

	minted, err := self.society.MintTicket(ctx, &society.MintTicketRequest{
		ActivityId:   payment.TicketActivityId.String,
		OwnerAddress: order.OwnerAddress.String,
		TelegramId:   order.UserId.Int64,
	})
	if err != nil {
		self.park(ctx, order, model.OrderStateFailed)
		self.monitor.Report.Orders.Errors.CsbtMintFailures.Inc()
		log.WithError(err).Error("CSBT mint failed, parking order")
		return
	}

	err = self.commitSettlement(ctx, order, payment, minted.NftAddress)
	if err != nil {
		self.monitor.Report.Orders.Errors.SettlementFailures.Inc()
		log.WithError(err).Error("Failed to commit order settlement")
		return
	}

	self.monitor.Report.Orders.State.OrdersSettled.Inc()
	self.monitor.Report.Orders.State.TicketsCreated.Inc()

	// Notices go out only after the commit
	if self.noticer != nil {
		self.noticer.Notice(ctx, fmt.Sprintf("Ticket settled for order <code>%s</code>", order.Uuid.String()))
	}
}

// commitSettlement flips the order to minted and applies every side
// effect in one transaction
func (self *Settler) commitSettlement(ctx context.Context, order *model.Order, payment *model.EventPayment, nftAddress string) (err error) {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		err = tx.Table(model.TableOrders).
			Where("id = ? AND state = ?", order.ID, model.OrderStateMintRequest).
			Updates(map[string]interface{}{
				"state":      model.OrderStateMinted,
				"updated_at": gorm.Expr("NOW()"),
			}).Error
		if err != nil {
			return
		}

		ticket := model.Ticket{
			EventUuid:  order.EventUuid.String,
			OrderUuid:  order.Uuid,
			UserId:     order.UserId,
			NftAddress: sql.NullString{String: nftAddress, Valid: nftAddress != ""},
			ActivityId: payment.TicketActivityId,
			Status:     model.TicketStatusApproved,
		}
		err = tx.Table(model.TableTickets).Create(&ticket).Error
		if err != nil {
			return
		}

		if order.CouponId.Valid {
			err = tx.Table(model.TableCoupons).
				Where("id = ?", order.CouponId.Int64).
				UpdateColumn("is_used", true).Error
			if err != nil {
				return
			}
		}

		if order.UtmSource.Valid && order.UtmSource.String != "" {
			err = tx.Table(model.TableAffiliateLinks).
				Where("link_hash = ?", order.UtmSource.String).
				UpdateColumn("total_purchases", gorm.Expr("total_purchases + 1")).Error
			if err != nil {
				return
			}
		}

		return
	})
}

func (self *Settler) findTicketPayment(ctx context.Context, order *model.Order) (payment *model.EventPayment, err error) {
	if !order.EventUuid.Valid {
		err = fmt.Errorf("order %s has no event", order.Uuid.String())
		return
	}

	payment = new(model.EventPayment)
	err = self.db.WithContext(ctx).
		Table(model.TableEventPayments).
		Where("event_uuid = ? AND ticket_activity_id IS NOT NULL", order.EventUuid.String).
		First(payment).Error
	if err != nil {
		return nil, err
	}

	if !payment.TicketActivityId.Valid {
		return nil, fmt.Errorf("event %s has no ticket activity", order.EventUuid.String)
	}
	return
}

// park moves the order to a terminal failure state. Parked rows stay
// put until an operator resets them.
func (self *Settler) park(ctx context.Context, order *model.Order, state model.OrderState) {
	err := self.db.WithContext(ctx).
		Table(model.TableOrders).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"state":      state,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	if err != nil {
		self.log.WithError(err).
			WithField("orderUuid", order.Uuid.String()).
			WithField("state", state).
			Error("Failed to park order")
	}
}

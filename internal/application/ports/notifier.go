package ports

import "context"

// Eventos publicados tras cada mutación confirmada.
const (
	EventCollectionCreated  = "collection.created"
	EventCollectionAdjusted = "collection.adjusted"
	EventCollectionUpdated  = "collection.updated"
	EventCollectionDeleted  = "collection.deleted"

	EventSettlementCreated = "settlement.created"
	EventSettlementUpdated = "settlement.updated"
	EventSettlementDeleted = "settlement.deleted"

	EventCardCreated    = "card.created"
	EventCardRepaid     = "card.repaid"
	EventCardSatisfied  = "card.satisfied"
	EventCardRetroceded = "card.retroceded"

	EventStockInput   = "stock.input"
	EventStockOutput  = "stock.output"
	EventStockAmended = "stock.amended"
	EventStockDeleted = "stock.deleted"

	EventTransferCreated   = "transfer.created"
	EventTransferValidated = "transfer.validated"
	EventTransferRejected  = "transfer.rejected"
	EventTransferDeleted   = "transfer.deleted"
)

// Notifier recibe eventos de dominio después del Commit.
// Es best-effort: no bloquea al llamador y sus fallos no afectan la operación.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
}

package repository

// Repositories agrupa los puertos atados a una misma transacción (unidad de trabajo).
type Repositories struct {
	Agents      AgentRepository
	Collectors  CollectorRepository
	Customers   CustomerRepository
	Products    ProductRepository
	Types       CardTypeRepository
	Cards       CardRepository
	Collections CollectionRepository
	Settlements SettlementRepository
	Stocks      StockRepository
	Transfers   TransferRepository
}

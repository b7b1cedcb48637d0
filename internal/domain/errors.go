package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio (determina el código HTTP en la capa de interfaces).
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
)

// Errores base por tipo. errors.Is(err, ErrNotFound) es verdadero para cualquier *Error de ese tipo.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrStorage      = errors.New("error de almacenamiento")
)

// Error es un error de dominio tipado con código estable (expuesto en las respuestas HTTP).
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap permite errors.Is(err, ErrNotFound|ErrConflict|ErrInvalidInput).
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindValidation:
		return ErrInvalidInput
	}
	return nil
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Referencias inexistentes.
var (
	ErrAgentNotFound      = newError(KindNotFound, "AGENT_NOT_FOUND", "agente no encontrado")
	ErrCollectorNotFound  = newError(KindNotFound, "COLLECTOR_NOT_FOUND", "colector no encontrado")
	ErrCustomerNotFound   = newError(KindNotFound, "CUSTOMER_NOT_FOUND", "cliente no encontrado")
	ErrCardNotFound       = newError(KindNotFound, "CARD_NOT_FOUND", "tarjeta no encontrada")
	ErrCollectionNotFound = newError(KindNotFound, "COLLECTION_NOT_FOUND", "colecta no encontrada")
	ErrProductNotFound    = newError(KindNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado")
	ErrTypeNotFound       = newError(KindNotFound, "TYPE_NOT_FOUND", "tipo no encontrado")
	ErrSettlementNotFound = newError(KindNotFound, "SETTLEMENT_NOT_FOUND", "liquidación no encontrada")
	ErrTransferNotFound   = newError(KindNotFound, "TRANSFER_NOT_FOUND", "transferencia no encontrada")
	ErrStockNotFound      = newError(KindNotFound, "STOCK_NOT_FOUND", "movimiento de stock no encontrado")
)

// Colectas.
var (
	ErrDuplicateCollection      = newError(KindConflict, "DUPLICATE_COLLECTION", "el colector ya tiene una colecta para ese día")
	ErrInsufficientAmount       = newError(KindConflict, "INSUFFICIENT_AMOUNT", "saldo de colecta insuficiente")
	ErrAgentImmutable           = newError(KindConflict, "AGENT_IMMUTABLE", "el agente no puede modificarse")
	ErrCollectorImmutable       = newError(KindConflict, "COLLECTOR_IMMUTABLE", "el colector no puede modificarse: la colecta tiene liquidaciones")
	ErrCollectionDateImmutable  = newError(KindConflict, "COLLECTION_DATE_IMMUTABLE", "la fecha no puede modificarse: la colecta tiene liquidaciones")
	ErrAmountImmutable          = newError(KindConflict, "AMOUNT_IMMUTABLE", "el monto no puede modificarse: la colecta tiene liquidaciones")
	ErrCollectionHasSettlements = newError(KindConflict, "COLLECTION_HAS_SETTLEMENTS", "la colecta tiene liquidaciones")
)

// Tarjetas.
var (
	ErrCardRepaid          = newError(KindConflict, "CARD_REPAID", "la tarjeta ya fue reembolsada")
	ErrCardSatisfied       = newError(KindConflict, "CARD_SATISFIED", "la tarjeta ya fue satisfecha")
	ErrCardTransferred     = newError(KindConflict, "CARD_TRANSFERRED", "la tarjeta ya fue transferida")
	ErrCardNotSatisfied    = newError(KindConflict, "CARD_NOT_SATISFIED", "la tarjeta no está satisfecha")
	ErrCardNotFullySettled = newError(KindConflict, "CARD_NOT_FULLY_SETTLED", "la tarjeta no alcanzó el tope de liquidaciones")
)

// Liquidaciones.
var (
	ErrRiskOfOverSettlement          = newError(KindConflict, "RISK_OF_OVER_SETTLEMENT", "la liquidación supera el tope de la tarjeta")
	ErrInsufficientCollectionAmount  = newError(KindConflict, "INSUFFICIENT_COLLECTION_AMOUNT", "saldo de colecta insuficiente para la liquidación")
	ErrSettlementCardImmutable       = newError(KindConflict, "SETTLEMENT_CARD_IMMUTABLE", "la tarjeta de la liquidación no puede modificarse")
	ErrSettlementCollectionImmutable = newError(KindConflict, "SETTLEMENT_COLLECTION_IMMUTABLE", "la colecta de la liquidación no puede modificarse")
	ErrSettlementAgentImmutable      = newError(KindConflict, "SETTLEMENT_AGENT_IMMUTABLE", "el agente de la liquidación no puede modificarse")
	ErrSettlementFromTransfer        = newError(KindConflict, "SETTLEMENT_FROM_TRANSFER", "una liquidación originada por transferencia no puede modificarse")
	ErrSettlementNotDeletable        = newError(KindConflict, "SETTLEMENT_NOT_DELETABLE", "una liquidación originada por transferencia no puede eliminarse")
	ErrUnvalidatedSettlementCreation = newError(KindValidation, "UNVALIDATED_SETTLEMENT_CREATION", "una liquidación debe crearse validada")
	ErrNumberChangeOnInvalidation    = newError(KindValidation, "NUMBER_CHANGE_ON_INVALIDATION", "no se puede cambiar el número al invalidar")
)

// Stock.
var (
	ErrProductNotInStock           = newError(KindConflict, "PRODUCT_NOT_IN_STOCK", "el producto no tiene stock")
	ErrInsufficientStockQuantity   = newError(KindConflict, "INSUFFICIENT_STOCK_QUANTITY", "stock insuficiente")
	ErrProductsNotAvailable        = newError(KindConflict, "PRODUCTS_NOT_AVAILABLE", "productos no disponibles")
	ErrImmutableStock              = newError(KindConflict, "IMMUTABLE_STOCK", "el movimiento de stock no puede modificarse")
	ErrMultipleRetrocessionPerHour = newError(KindConflict, "MULTIPLE_RETROCESSION_PER_HOUR", "ya hubo una retrocesión para la tarjeta en esta hora")
	ErrArrayLengthMismatch         = newError(KindValidation, "ARRAY_LENGTH_MISMATCH", "productos y cantidades deben tener la misma longitud")
	ErrDuplicateProduct            = newError(KindValidation, "DUPLICATE_PRODUCT", "producto repetido")
)

// Transferencias.
var (
	ErrInsufficientSettlements            = newError(KindConflict, "INSUFFICIENT_SETTLEMENTS", "liquidaciones insuficientes para transferir")
	ErrReceivingCardComplete              = newError(KindConflict, "RECEIVING_CARD_COMPLETE", "la tarjeta receptora ya está completa")
	ErrTransferAlreadyProcessed           = newError(KindConflict, "TRANSFER_ALREADY_PROCESSED", "la transferencia ya fue validada o rechazada")
	ErrTransferCardsImmutable             = newError(KindConflict, "TRANSFER_CARDS_IMMUTABLE", "las tarjetas de la transferencia no pueden modificarse")
	ErrSameCardTransfer                   = newError(KindValidation, "SAME_CARD_TRANSFER", "la tarjeta emisora y la receptora deben ser distintas")
	ErrValidationAndRejectionBothProvided = newError(KindValidation, "VALIDATION_AND_REJECTION_BOTH_PROVIDED", "no se puede validar y rechazar a la vez")
)

// Validación general.
var (
	ErrInvalidDate   = newError(KindValidation, "INVALID_DATE", "fecha inválida")
	ErrInvalidNumber = newError(KindValidation, "INVALID_INPUT", "cantidad inválida")
)

// StorageError envuelve un fallo inesperado del almacenamiento (opaco para el cliente).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// Storage envuelve err como StorageError salvo que ya sea un error de dominio.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// KindOf devuelve el tipo de un error; los errores desconocidos se tratan como Storage.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}

// CodeOf devuelve el código estable del error de dominio o "INTERNAL".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}

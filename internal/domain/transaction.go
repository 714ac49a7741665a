package domain

// TransactionKind names one of the operations a client can request.
type TransactionKind string

const (
	TransactionReset  TransactionKind = "reset"
	TransactionCreate TransactionKind = "create"
	TransactionBuy    TransactionKind = "buy"
	TransactionSell   TransactionKind = "sell"
	TransactionStatus TransactionKind = "status"
)

// Valid reports whether k is a recognized transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionReset, TransactionCreate, TransactionBuy, TransactionSell, TransactionStatus:
		return true
	}
	return false
}

// Transaction is a decoded client request. Amount is zero for reset
// and status.
type Transaction struct {
	Kind   TransactionKind
	Stock  string
	Amount int64
}

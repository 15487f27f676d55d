package domain

// Transaction types recorded in the ledger
const (
	TxPayment         = "payment"          // User-initiated debit
	TxAdminAdjustment = "admin_adjustment" // Administrative balance correction
)

// Transaction Model (append-only ledger row)
type Transaction struct {
	ID        uint    `json:"id" gorm:"primaryKey"`              // Primary key
	UserID    uint    `json:"user_id" gorm:"index;not null"`     // Foreign key to the owning User
	Amount    float64 `json:"amount"`                            // Signed amount: negative for debits
	Type      string  `json:"type"`                              // Transaction type: payment, admin_adjustment
	CreatedAt int64   `json:"created_at" gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

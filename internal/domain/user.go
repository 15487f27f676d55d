package domain

// User Model
type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`              // Primary key
	Username string  `json:"username" gorm:"unique;not null"`   // Unique username, stored lowercase
	Password string  `json:"-" gorm:"not null"`                 // Bcrypt password hash, never serialized
	Role     string  `json:"role" gorm:"default:user"`          // Role: user or admin
	Balance  float64 `json:"balance" gorm:"not null;default:0"` // Spendable balance, never negative
}

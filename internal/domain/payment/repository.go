package payment

import "time"

// UpdateFields is a partial update; nil pointers leave the field untouched.
type UpdateFields struct {
	Status        *Status
	Description   *string
	FailureReason *string
	TransactionID *string
	ProcessedAt   *time.Time
	Metadata      map[string]string
}

type Repository interface {
	Create(*Payment) error
	FindByID(string) (*Payment, error)
	FindByTransactionID(string) (*Payment, error)
	Update(string, UpdateFields) (*Payment, error)
	Delete(string) error
	List() ([]*Payment, error)
}

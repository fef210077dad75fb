package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payflow-labs/payflow/internal/domain/payment"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, amount, currency, status, method, description,
	customer_id, merchant_id, metadata, created_at, updated_at,
	processed_at, failure_reason, transaction_id`

func (r *PaymentRepository) Create(p *payment.Payment) error {
	metadata, err := json.Marshal(orEmpty(p.Metadata))
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Amount.String(),
		p.Currency,
		string(p.Status),
		string(p.Method),
		p.Description,
		p.CustomerID,
		p.MerchantID,
		string(metadata),
		p.CreatedAt,
		p.UpdatedAt,
		nullTime(p.ProcessedAt),
		p.FailureReason,
		nullString(p.TransactionID),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return fmt.Errorf("%w: %v", payment.ErrDuplicatePayment, err)
	}
	return err
}

func (r *PaymentRepository) FindByID(id string) (*payment.Payment, error) {
	row := r.db.QueryRow(
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	return scanPayment(row)
}

func (r *PaymentRepository) FindByTransactionID(txnID string) (*payment.Payment, error) {
	row := r.db.QueryRow(
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = ?`, txnID)
	return scanPayment(row)
}

func (r *PaymentRepository) Update(id string, fields payment.UpdateFields) (*payment.Payment, error) {
	current, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	if fields.Status != nil {
		current.Status = *fields.Status
	}
	if fields.Description != nil {
		current.Description = *fields.Description
	}
	if fields.FailureReason != nil {
		current.FailureReason = *fields.FailureReason
	}
	if fields.TransactionID != nil {
		current.TransactionID = *fields.TransactionID
	}
	if fields.ProcessedAt != nil {
		t := *fields.ProcessedAt
		current.ProcessedAt = &t
	}
	if fields.Metadata != nil {
		if current.Metadata == nil {
			current.Metadata = make(map[string]string, len(fields.Metadata))
		}
		maps.Copy(current.Metadata, fields.Metadata)
	}

	now := time.Now().UTC()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Nanosecond)
	}
	current.UpdatedAt = now

	metadata, err := json.Marshal(orEmpty(current.Metadata))
	if err != nil {
		return nil, err
	}

	res, err := r.db.Exec(
		`UPDATE payments
		 SET status = ?, description = ?, failure_reason = ?, transaction_id = ?,
		     processed_at = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		string(current.Status),
		current.Description,
		current.FailureReason,
		nullString(current.TransactionID),
		nullTime(current.ProcessedAt),
		string(metadata),
		current.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, payment.ErrPaymentNotFound
	}

	return current, nil
}

func (r *PaymentRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

func (r *PaymentRepository) List() ([]*payment.Payment, error) {
	rows, err := r.db.Query(
		`SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var (
		p           payment.Payment
		amount      string
		status      string
		method      string
		metadata    string
		processedAt sql.NullTime
		txnID       sql.NullString
	)

	if err := row.Scan(
		&p.ID,
		&amount,
		&p.Currency,
		&status,
		&method,
		&p.Description,
		&p.CustomerID,
		&p.MerchantID,
		&metadata,
		&p.CreatedAt,
		&p.UpdatedAt,
		&processedAt,
		&p.FailureReason,
		&txnID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, err
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for payment %s: %w", p.ID, err)
	}
	p.Amount = dec
	p.Status = payment.Status(status)
	p.Method = payment.Method(method)

	if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
		return nil, fmt.Errorf("corrupt metadata for payment %s: %w", p.ID, err)
	}
	if len(p.Metadata) == 0 {
		p.Metadata = nil
	}
	if processedAt.Valid {
		t := processedAt.Time
		p.ProcessedAt = &t
	}
	if txnID.Valid {
		p.TransactionID = txnID.String
	}

	return &p, nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

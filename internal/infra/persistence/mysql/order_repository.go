package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domorder "example.com/glowshop/internal/domain/order"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// RecordOnce inserts the receipt and its items in one transaction. The
// UNIQUE index on session_id makes the duplicate path explicit: a second
// insert for the same session reports (false, nil) and writes nothing.
func (r *OrderRepository) RecordOnce(ctx context.Context, receipt *domorder.Receipt) (bool, error) {
	if len(receipt.Items) == 0 {
		return false, domorder.ErrEmptyReceipt
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (session_id, user_id, email, total_cents, currency, status)
        VALUES (?, ?, ?, ?, ?, ?)
    `, receipt.SessionID, receipt.UserID, receipt.Email, receipt.TotalCents,
		receipt.Currency, string(receipt.Status))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return false, nil
		}
		return false, err
	}
	receipt.ID, _ = res.LastInsertId()

	for i := range receipt.Items {
		item := &receipt.Items[i]
		res, err := tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, name, price_cents, quantity)
            VALUES (?, ?, ?, ?)
        `, receipt.ID, item.Name, item.PriceCents, item.Quantity)
		if err != nil {
			return false, fmt.Errorf("insert order item: %w", err)
		}
		item.ID, _ = res.LastInsertId()
		item.ReceiptID = receipt.ID
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *OrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*domorder.Receipt, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, session_id, user_id, email, total_cents, currency, status, created_at
        FROM orders WHERE session_id = ?
    `, sessionID)

	receipt, err := scanReceipt(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Receipt, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, session_id, user_id, email, total_cents, currency, status, created_at
        FROM orders ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*domorder.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, receipt := range receipts {
		if err := r.loadItems(ctx, receipt); err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, receipt *domorder.Receipt) error {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, name, price_cents, quantity
        FROM order_items WHERE order_id = ? ORDER BY id
    `, receipt.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domorder.ReceiptItem
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.PriceCents, &item.Quantity); err != nil {
			return err
		}
		receipt.Items = append(receipt.Items, item)
	}
	return rows.Err()
}

func scanReceipt(row interface{ Scan(...any) error }) (*domorder.Receipt, error) {
	var receipt domorder.Receipt
	var status string
	var userID sql.NullInt64
	err := row.Scan(&receipt.ID, &receipt.SessionID, &userID, &receipt.Email,
		&receipt.TotalCents, &receipt.Currency, &status, &receipt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrReceiptNotFound
		}
		return nil, err
	}
	if userID.Valid {
		receipt.UserID = &userID.Int64
	}
	receipt.Status = domorder.Status(status)
	return &receipt, nil
}

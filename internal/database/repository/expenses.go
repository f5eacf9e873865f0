package repository

import (
	"context"
	"database/sql"
)

// ExpenseRepo handles expenses.
type ExpenseRepo struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

func (r *ExpenseRepo) Insert(ctx context.Context, e Expense) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO expenses(id, user_id, category_id, amount_cents, note, subcategory, shop, spent_at, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.UserID, e.CategoryID, e.AmountCents, e.Note, e.Subcategory, e.Shop,
		toMillis(e.SpentAt), nowMillis())
	return err
}

func (r *ExpenseRepo) ListForUser(ctx context.Context, userID int64) ([]Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, category_id, amount_cents, note, subcategory, shop, spent_at, created_at
	FROM expenses
	WHERE user_id = ?
	ORDER BY spent_at DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExpenseRepo) Get(ctx context.Context, id string) (*Expense, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, category_id, amount_cents, note, subcategory, shop, spent_at, created_at
	FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// scanExpense handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row scanner) (Expense, error) {
	var e Expense
	var subcat, shop sql.NullString
	var spent, created int64
	if err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.AmountCents, &e.Note,
		&subcat, &shop, &spent, &created); err != nil {
		return Expense{}, err
	}
	if subcat.Valid {
		e.Subcategory = &subcat.String
	}
	if shop.Valid {
		e.Shop = &shop.String
	}
	e.SpentAt = fromMillis(spent)
	e.CreatedAt = fromMillis(created)
	return e, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pennypost/pennypost/internal/database/repository"
	"github.com/pennypost/pennypost/internal/recommend"
)

// ExpenseService is the write path for logging spending. Saving an expense is
// the "completed action" that confirms any subcategory/shop name attached to
// it, so the save marks both names used in the suggestion store.
type ExpenseService struct {
	Expenses        *repository.ExpenseRepo
	Recommendations *recommend.Service
}

// ExpenseInput carries one expense entry from the UI.
type ExpenseInput struct {
	UserID       int64
	CategoryID   int64
	CategoryName string
	AmountCents  int64
	Note         string
	Subcategory  string
	Shop         string
	SpentAt      time.Time
}

// Log persists the expense and confirms its names. The expense write is the
// primary action and its error propagates; suggestion bookkeeping is
// best-effort and never blocks the save.
func (s *ExpenseService) Log(ctx context.Context, in ExpenseInput) (string, error) {
	if in.AmountCents == 0 {
		return "", fmt.Errorf("expense: amount required")
	}
	if in.CategoryID == 0 {
		return "", fmt.Errorf("expense: category required")
	}

	id := uuid.NewString()
	e := repository.Expense{
		ID:          id,
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
		AmountCents: in.AmountCents,
		Note:        in.Note,
		SpentAt:     in.SpentAt,
	}
	if sub := recommend.CleanDisplay(in.Subcategory); sub != "" {
		e.Subcategory = &sub
	}
	if shop := recommend.CleanDisplay(in.Shop); shop != "" {
		e.Shop = &shop
	}
	if e.SpentAt.IsZero() {
		e.SpentAt = time.Now().UTC()
	}

	if err := s.Expenses.Insert(ctx, e); err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	if s.Recommendations != nil {
		s.Recommendations.MarkUsed(ctx, recommend.KindSubcategory, in.UserID, in.CategoryName, in.Subcategory)
		s.Recommendations.MarkUsed(ctx, recommend.KindShop, in.UserID, in.CategoryName, in.Shop)
	}
	return id, nil
}

// Draft registers names the user has typed into a still-open form without
// bumping usage counters, so they show up as suggestions even if the form is
// abandoned.
func (s *ExpenseService) Draft(ctx context.Context, in ExpenseInput) {
	if s.Recommendations == nil {
		return
	}
	s.Recommendations.Register(ctx, recommend.KindSubcategory, in.UserID, in.CategoryName, in.Subcategory)
	s.Recommendations.Register(ctx, recommend.KindShop, in.UserID, in.CategoryName, in.Shop)
}

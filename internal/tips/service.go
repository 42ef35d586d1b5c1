package tips

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Employee is a tip recipient.
type Employee struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Active      bool   `db:"active" json:"active"`
	TipEligible bool   `db:"tip_eligible" json:"tip_eligible"`
}

// Share is one employee's slice of a distributed tip.
type Share struct {
	ID         string          `db:"id" json:"id"`
	OrderID    string          `db:"order_id" json:"order_id"`
	EmployeeID string          `db:"employee_id" json:"employee_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Week       int             `db:"week" json:"week"`
	Month      int             `db:"month" json:"month"`
	Year       int             `db:"year" json:"year"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Total is an aggregated per-employee amount within a period.
type Total struct {
	EmployeeID string          `db:"employee_id" json:"employee_id"`
	Name       string          `db:"name" json:"name"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
}

// Service persists tip distributions.
type Service struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewService creates a tip Service.
func NewService(db *sqlx.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Distribute splits amount equally among currently eligible employees and
// records one share per employee. Period buckets come from the distribution
// time: ISO week plus calendar month and year.
func (s *Service) Distribute(ctx context.Context, orderID string, amount decimal.Decimal, at time.Time) ([]Share, error) {
	employees, err := s.eligibleEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, ErrNoRecipients
	}

	amounts, err := Split(amount, len(employees))
	if err != nil {
		return nil, err
	}

	_, week := at.ISOWeek()
	shares := make([]Share, len(employees))
	for i, emp := range employees {
		shares[i] = Share{
			ID:         uuid.New().String(),
			OrderID:    orderID,
			EmployeeID: emp.ID,
			Amount:     amounts[i],
			Week:       week,
			Month:      int(at.Month()),
			Year:       at.Year(),
			CreatedAt:  at,
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tip_shares (id, order_id, employee_id, amount, week, month, year, created_at)
		VALUES (:id, :order_id, :employee_id, :amount, :week, :month, :year, :created_at)
	`
	for _, share := range shares {
		if _, err := tx.NamedExecContext(ctx, query, share); err != nil {
			return nil, fmt.Errorf("failed to insert tip share: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tip shares: %w", err)
	}

	s.logger.Info("tip distributed",
		slog.String("order_id", orderID),
		slog.String("amount", amount.String()),
		slog.Int("recipients", len(shares)),
	)
	return shares, nil
}

// Totals aggregates shares per employee for one period. Period is "week",
// "month" or "year"; the reference time selects which bucket.
func (s *Service) Totals(ctx context.Context, period string, at time.Time) ([]Total, error) {
	query := `
		SELECT ts.employee_id, e.name, COALESCE(SUM(ts.amount), 0) AS amount
		FROM tip_shares ts
		JOIN employees e ON e.id = ts.employee_id
		WHERE ts.year = $1
	`
	_, week := at.ISOWeek()
	args := []interface{}{at.Year()}

	switch period {
	case "week":
		query += " AND ts.week = $2"
		args = append(args, week)
	case "month":
		query += " AND ts.month = $2"
		args = append(args, int(at.Month()))
	case "year":
		// year filter already applied
	default:
		return nil, fmt.Errorf("invalid tip period %q", period)
	}

	query += " GROUP BY ts.employee_id, e.name ORDER BY e.name ASC"

	var totals []Total
	if err := s.db.SelectContext(ctx, &totals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate tips: %w", err)
	}
	return totals, nil
}

func (s *Service) eligibleEmployees(ctx context.Context) ([]Employee, error) {
	query := `
		SELECT id, name, active, tip_eligible
		FROM employees
		WHERE active = TRUE AND tip_eligible = TRUE
		ORDER BY name ASC
	`

	var employees []Employee
	if err := s.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("failed to list eligible employees: %w", err)
	}
	return employees, nil
}

package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mchmarny/propensity/pkg/score"
)

const (
	selectCustomersSQL = `SELECT id, age, annual_income, expenses, credit_score,
		website_visits, active_policies, matured_policies,
		email_response_rate, app_interactions, feedback_score
		FROM %s
		ORDER BY id
	`

	limitSQL = ` LIMIT %d`
)

var (
	// ErrInvalidTable is returned for table names that are not plain identifiers.
	ErrInvalidTable = errors.New("invalid table name")

	tableRegEx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// NamedCustomer is a customer record with the identifier it was stored under.
type NamedCustomer struct {
	ID       string         `json:"id" yaml:"id"`
	Customer score.Customer `json:"customer" yaml:"customer"`
}

// QueryCustomers reads customer records from table. Limit <= 0 returns all rows.
func QueryCustomers(ctx context.Context, db *sql.DB, table string, limit int) ([]*NamedCustomer, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	if table == "" {
		table = TableDefault
	}
	if !tableRegEx.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	q := fmt.Sprintf(selectCustomersSQL, table)
	if limit > 0 {
		q += fmt.Sprintf(limitSQL, limit)
	}

	slog.Debug("querying customers", "table", table, "limit", limit)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers from %s: %w", table, err)
	}
	defer rows.Close()

	list := make([]*NamedCustomer, 0)
	for rows.Next() {
		var id sql.NullString
		c := &NamedCustomer{}
		if err := rows.Scan(
			&id,
			&c.Customer.Age,
			&c.Customer.AnnualIncome,
			&c.Customer.Expenses,
			&c.Customer.CreditScore,
			&c.Customer.WebsiteVisits,
			&c.Customer.ActivePolicies,
			&c.Customer.MaturedPolicies,
			&c.Customer.EmailResponseRate,
			&c.Customer.AppInteractions,
			&c.Customer.FeedbackScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		c.ID = id.String
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer rows: %w", err)
	}

	return list, nil
}

// Name assigns sequential identifiers to records read from a file.
func Name(list []*score.Customer) []*NamedCustomer {
	named := make([]*NamedCustomer, 0, len(list))
	for i, c := range list {
		if c == nil {
			continue
		}
		named = append(named, &NamedCustomer{
			ID:       fmt.Sprintf("%d", i+1),
			Customer: *c,
		})
	}
	return named
}

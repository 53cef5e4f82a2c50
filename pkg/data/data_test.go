package data

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/propensity/pkg/score"
	"github.com/stretchr/testify/require"
)

const createCustomerTableSQL = `CREATE TABLE customer (
	id INTEGER PRIMARY KEY,
	age INTEGER NOT NULL,
	annual_income REAL NOT NULL,
	expenses REAL NOT NULL,
	credit_score INTEGER NOT NULL,
	website_visits INTEGER NOT NULL,
	active_policies INTEGER NOT NULL,
	matured_policies INTEGER NOT NULL,
	email_response_rate REAL NOT NULL,
	app_interactions INTEGER NOT NULL,
	feedback_score INTEGER NOT NULL
)`

const insertCustomerSQL = `INSERT INTO customer (id, age, annual_income, expenses,
	credit_score, website_visits, active_policies, matured_policies,
	email_response_rate, app_interactions, feedback_score)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func sampleCustomer() score.Customer {
	return score.Customer{
		Age:               36,
		AnnualIncome:      1200970,
		Expenses:          979021,
		CreditScore:       544,
		WebsiteVisits:     48,
		ActivePolicies:    5,
		MaturedPolicies:   0,
		EmailResponseRate: 0.9966,
		AppInteractions:   28,
		FeedbackScore:     9,
	}
}

func minCustomer() score.Customer {
	return score.Customer{
		Age:           22,
		AnnualIncome:  200000,
		Expenses:      50000,
		CreditScore:   300,
		FeedbackScore: 1,
	}
}

// setupTestDB writes a sqlite fixture with the given customers and returns
// its path. The fixture is created with a writable handle; GetDB opens it
// read-only.
func setupTestDB(t *testing.T, list ...score.Customer) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(createCustomerTableSQL)
	require.NoError(t, err)

	for i, c := range list {
		_, err = db.Exec(insertCustomerSQL, i+1, c.Age, c.AnnualIncome, c.Expenses,
			c.CreditScore, c.WebsiteVisits, c.ActivePolicies, c.MaturedPolicies,
			c.EmailResponseRate, c.AppInteractions, c.FeedbackScore)
		require.NoError(t, err)
	}
	return dbPath
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

// Package score implements the customer propensity model: each feature of a
// [Customer] is min-max normalized against a fixed range, weighted, summed
// and scaled to a 0-100 score rounded to two decimals. It exposes [Compute],
// the read-only range and weight tables, and an optional [Validate] pre-pass.
package score

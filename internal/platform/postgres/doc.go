// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. Schema lives in the embedded goose
// migrations under migrations/.
package postgres

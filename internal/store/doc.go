// Package store persists whale prints, subscriber preferences, and the
// durable market metadata cache in Postgres.
package store

// Package model defines the canonical types shared across the tracker:
// classified trade records, subscriber preferences, and market metadata.
package model

// Package models contains the GORM persistence models for the revenue ledger.
// Models carry the table mappings and column tags and convert to and from the
// billing domain types, which stay free of ORM concerns.
package models

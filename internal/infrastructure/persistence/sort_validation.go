package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"order_number":       true,
	"status":             true,
	"payment_status":     true,
	"fulfillment_status": true,
	"grand_total":        true,
	"total_paid":         true,
	"confirmed_at":       true,
	"completed_at":       true,
}

// MovementSortFields contains allowed sort fields for the stock movement log
var MovementSortFields = map[string]bool{
	"created_at": true,
	"type":       true,
	"delta":      true,
}

// orderClause builds a safe ORDER BY clause from a filter
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir)
}

package service

import "strings"

// StripSQLFences removes markdown code fences the model sometimes wraps
// around generated SQL.
func StripSQLFences(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}

// IsReadOnlyQuery reports whether the statement is a plain SELECT or
// WITH query. The schedule database is read-only; anything else is
// rejected before it reaches the network.
func IsReadOnlyQuery(sqlText string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	if normalized == "" {
		return false
	}
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}

package cacheview

// Canonical cache key per collection. The legacy system drifted between
// "Employees"/"employees:list" (and similar pairs), which silently split
// readers and writers across different keys; every component here goes
// through these constants instead.
const (
	KeyEmployees = "employees:list"
	KeyLeaves    = "leaves:list"
	KeyHolidays  = "holidays:list"
)

// KeyUser is the single-employee lookup key.
func KeyUser(id string) string {
	return "user:" + id
}

package utils

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ClampLimit bounds limit to [1, max], substituting def when it is not
// positive.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

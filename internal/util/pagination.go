package util

// MaxLimit caps page size across every listing endpoint.
const MaxLimit = 100

// Clamp normalizes skip/limit query values into safe offsets.
func Clamp(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

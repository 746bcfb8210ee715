package cursorpaging

const (
	MaxPageSize     = 100
	DefaultPageSize = 100
)

func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= 0 {
		return min(DefaultPageSize, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxPageSize)
}

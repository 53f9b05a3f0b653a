package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate normalises a 1-based page and a page size and returns them with
// the row offset of the first item.
func Calculate(page, size int) (p, from, limit int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	from = (page - 1) * size
	return page, from, size
}

func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}

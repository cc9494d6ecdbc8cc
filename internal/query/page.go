package query

// Page is a bounded slice of matching records plus counts for the whole
// matching set.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// NewPage computes TotalPages as ceil(total/limit), never less than 1.
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 1
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}

// Window returns the [start, end) bounds of page within n items.
func Window(n, page, limit int) (int, int) {
	if page < 1 || limit < 1 || page-1 > n/limit {
		return n, n
	}
	start := (page - 1) * limit
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}

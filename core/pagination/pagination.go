package pagination

// windowSize is the number of page buttons rendered around the current page.
const windowSize = 3

// SizeOptions are the page sizes offered by the page-size selector.
var SizeOptions = []int{5, 10, 20, 50}

// Pages returns the page numbers to render for the given position.
// All pages are returned when there are no more than 3 of them, otherwise a 3-wide window:
// {1,2,3} on the first page, {n-2,n-1,n} on the last page, {c-1,c,c+1} anywhere else.
func Pages(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= windowSize {
		pages := make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	current = Clamp(current, total)
	switch current {
	case 1:
		return []int{1, 2, 3}
	case total:
		return []int{total - 2, total - 1, total}
	default:
		return []int{current - 1, current, current + 1}
	}
}

// Clamp restricts page to [1, total]. A total below 1 is treated as a single page.
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// IsValidSize reports whether size is one of SizeOptions.
func IsValidSize(size int) bool {
	for _, opt := range SizeOptions {
		if opt == size {
			return true
		}
	}
	return false
}

// Controls describes the pagination footer.
type Controls struct {
	Current     int   `json:"current"`
	Total       int   `json:"total"`
	Size        int   `json:"size"`
	Pages       []int `json:"pages"`
	First       int   `json:"first"`
	Prev        int   `json:"prev"`
	Next        int   `json:"next"`
	Last        int   `json:"last"`
	HasPrev     bool  `json:"has_prev"` // first & previous buttons enabled
	HasNext     bool  `json:"has_next"` // next & last buttons enabled
	SizeOptions []int `json:"size_options"`
}

func NewControls(current, total, size int) Controls {
	if total < 1 {
		total = 1
	}
	current = Clamp(current, total)
	return Controls{
		Current:     current,
		Total:       total,
		Size:        size,
		Pages:       Pages(current, total),
		First:       1,
		Prev:        Clamp(current-1, total),
		Next:        Clamp(current+1, total),
		Last:        total,
		HasPrev:     current > 1,
		HasNext:     current < total,
		SizeOptions: SizeOptions,
	}
}

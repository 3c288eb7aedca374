package views

// Paginator moves a cursor over a list shown size rows at a time. The
// page always follows the cursor.
type Paginator struct {
	size   int
	total  int
	cursor int
}

// NewPaginator creates a paginator showing size rows per page
func NewPaginator(size int) *Paginator {
	if size <= 0 {
		size = snapshotPageSize
	}
	return &Paginator{size: size}
}

// SetTotal sets the list length and pulls the cursor back inside it
func (p *Paginator) SetTotal(total int) {
	p.total = max(total, 0)
	p.cursor = max(min(p.cursor, p.total-1), 0)
}

// Reset empties the paginator
func (p *Paginator) Reset() {
	p.total, p.cursor = 0, 0
}

// Cursor is the absolute index of the selected row
func (p *Paginator) Cursor() int {
	return p.cursor
}

func (p *Paginator) CursorUp() bool   { return p.moveTo(p.cursor - 1) }
func (p *Paginator) CursorDown() bool { return p.moveTo(p.cursor + 1) }

// NextPage and PrevPage put the cursor on the first row of the page
func (p *Paginator) NextPage() bool { return p.moveTo((p.page() + 1) * p.size) }
func (p *Paginator) PrevPage() bool { return p.moveTo((p.page() - 1) * p.size) }

func (p *Paginator) moveTo(i int) bool {
	if i < 0 || i >= p.total {
		return false
	}
	p.cursor = i
	return true
}

func (p *Paginator) page() int {
	return p.cursor / p.size
}

// VisibleRange returns the [start, end) rows of the current page
func (p *Paginator) VisibleRange() (start, end int) {
	start = p.page() * p.size
	return start, min(start+p.size, p.total)
}

// CurrentPage is 1-based
func (p *Paginator) CurrentPage() int {
	return p.page() + 1
}

func (p *Paginator) TotalPages() int {
	return max((p.total+p.size-1)/p.size, 1)
}

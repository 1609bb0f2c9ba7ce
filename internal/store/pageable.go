package store

// Order is one sort criterion of a Pageable.
type Order struct {
	Property   string
	Descending bool
}

// Asc builds an ascending Order for the given property.
func Asc(property string) Order {
	return Order{Property: property}
}

// Desc builds a descending Order for the given property.
func Desc(property string) Order {
	return Order{Property: property, Descending: true}
}

// Pageable bundles page number, page size and sort order for a query.
// A nil *Pageable means an unpaged, unordered full scan.
type Pageable struct {
	Page int // zero-based
	Size int
	Sort []Order
}

// PageRequest builds a Pageable with the given page number, size and
// optional sort orders.
func PageRequest(page int, size int, orders ...Order) *Pageable {
	return &Pageable{Page: page, Size: size, Sort: orders}
}

// Offset is the number of rows to skip for this page.
func (p *Pageable) Offset() int {
	return p.Page * p.Size
}

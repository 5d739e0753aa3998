package domain

import "math"

type Page struct {
	Number int
	Size   int
}

func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := 10
	if pageSize > 0 {
		pSize = pageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// IsOutOfRange returns whether the offset of the page cannot be represented.
func (p Page) IsOutOfRange() bool {
	return p.Size > 0 && p.Number > 1 && p.Number-1 > math.MaxInt/p.Size
}

// Offset returns the number of entries preceding the page. It saturates to
// math.MaxInt for pages out of range, so that they always come out empty.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.IsOutOfRange() {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

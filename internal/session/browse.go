package session

// Browse is the single-axis browse state used by snipe-style sessions: an
// index over a fixed snapshot, clamped at both ends, no wraparound.
type Browse struct {
	Index int
	Count int
}

// Prev steps back one entry, clamped at the first.
func (b Browse) Prev() Browse {
	if b.Index > 0 {
		b.Index--
	}
	return b
}

// Next steps forward one entry, clamped at the last.
func (b Browse) Next() Browse {
	if b.Index < b.Count-1 {
		b.Index++
	}
	return b
}

// AtStart reports whether the index is on the first entry.
func (b Browse) AtStart() bool {
	return b.Index <= 0
}

// AtEnd reports whether the index is on the last entry.
func (b Browse) AtEnd() bool {
	return b.Index >= b.Count-1
}

// Pages is the two-axis browse state used by the help browser: a category
// index and a page index within the category. Switching category resets the
// page to the first. Both axes clamp, no wraparound.
type Pages struct {
	Category int
	Page     int

	counts  []int
	perPage int
}

// NewPages builds a two-axis state over categories with the given item
// counts, paged perPage items at a time.
func NewPages(counts []int, perPage int) Pages {
	if perPage < 1 {
		perPage = 1
	}
	return Pages{counts: counts, perPage: perPage}
}

// PerPage returns the page size.
func (p Pages) PerPage() int {
	return p.perPage
}

// CategoryCount returns the number of categories.
func (p Pages) CategoryCount() int {
	return len(p.counts)
}

// ItemCount returns the number of items in the current category.
func (p Pages) ItemCount() int {
	if p.Category < 0 || p.Category >= len(p.counts) {
		return 0
	}
	return p.counts[p.Category]
}

// PageCount returns the number of pages in the current category; a category
// always has at least one page.
func (p Pages) PageCount() int {
	n := (p.ItemCount() + p.perPage - 1) / p.perPage
	if n < 1 {
		n = 1
	}
	return n
}

// PageBounds returns the half-open item range [start, end) for the current
// page.
func (p Pages) PageBounds() (int, int) {
	start := p.Page * p.perPage
	end := start + p.perPage
	if count := p.ItemCount(); end > count {
		end = count
	}
	return start, end
}

// PrevPage steps back one page, clamped at the first.
func (p Pages) PrevPage() Pages {
	if p.Page > 0 {
		p.Page--
	}
	return p
}

// NextPage steps forward one page, clamped at the last.
func (p Pages) NextPage() Pages {
	if p.Page < p.PageCount()-1 {
		p.Page++
	}
	return p
}

// PrevCategory steps to the previous category, resetting the page.
func (p Pages) PrevCategory() Pages {
	if p.Category > 0 {
		p.Category--
		p.Page = 0
	}
	return p
}

// NextCategory steps to the next category, resetting the page.
func (p Pages) NextCategory() Pages {
	if p.Category < len(p.counts)-1 {
		p.Category++
		p.Page = 0
	}
	return p
}

// AtFirstCategory reports whether the first category is selected.
func (p Pages) AtFirstCategory() bool {
	return p.Category <= 0
}

// AtLastCategory reports whether the last category is selected.
func (p Pages) AtLastCategory() bool {
	return p.Category >= len(p.counts)-1
}

// AtFirstPage reports whether the first page of the category is shown.
func (p Pages) AtFirstPage() bool {
	return p.Page <= 0
}

// AtLastPage reports whether the last page of the category is shown.
func (p Pages) AtLastPage() bool {
	return p.Page >= p.PageCount()-1
}

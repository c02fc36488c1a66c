package domain

// PaginatorInfo describes where a page sits in a remote list.
// HasMorePages is taken from the server as-is; it is not recomputed from
// CurrentPage and LastPage.
type PaginatorInfo struct {
	CurrentPage  int  `json:"currentPage"`
	LastPage     int  `json:"lastPage"`
	HasMorePages bool `json:"hasMorePages"`
	Total        int  `json:"total"`
}

// DefaultPaginator is the paginator of a list that has not loaded yet.
func DefaultPaginator() PaginatorInfo {
	return PaginatorInfo{CurrentPage: 1, LastPage: 1, HasMorePages: false, Total: 0}
}

// PaginatedList is one page of items plus its paginator.
type PaginatedList[T any] struct {
	Items     []T           `json:"items"`
	Paginator PaginatorInfo `json:"paginator"`
}

// PageQuery is the page window passed to list-returning repository calls.
type PageQuery struct {
	Page     int
	PageSize int
}

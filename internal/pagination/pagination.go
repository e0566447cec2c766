package pagination

// Params is a 1-based page request.
type Params struct {
	Page     int `form:"page" binding:"required,min=1"`
	PageSize int `form:"pageSize" binding:"required,min=1"`
}

// Offset converts the page request into a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(totalCount / pageSize). Zero rows means zero pages.
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

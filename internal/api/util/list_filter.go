package util

// ListFilter bundles the parsed query/order terms and pagination that every
// list endpoint accepts. Repository-specific filters embed it.
type ListFilter struct {
	Filters []QueryFilter
	Order   []OrderClause
	Page    int
	PerPage int
}

package util

import (
	"fmt"
	"strings"
)

// QueryOperator is a comparison operator in the list-filter query language.
type QueryOperator string

const (
	OpEq        QueryOperator = "eq"
	OpNe        QueryOperator = "ne"
	OpGt        QueryOperator = "gt"
	OpGte       QueryOperator = "gte"
	OpLt        QueryOperator = "lt"
	OpLte       QueryOperator = "lte"
	OpIn        QueryOperator = "in"
	OpNin       QueryOperator = "nin"
	OpIsNull    QueryOperator = "isnull"
	OpIsNotNull QueryOperator = "isnotnull"
)

// QueryFilter is one parsed condition. Value is a string, a []string for
// in/nin, or nil for the null checks.
type QueryFilter struct {
	Field    string
	Operator QueryOperator
	Value    interface{}
}

// OrderDirection is asc or desc.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// OrderClause is one parsed order term.
type OrderClause struct {
	Field     string
	Direction OrderDirection
}

var operators = map[string]QueryOperator{
	"eq":        OpEq,
	"ne":        OpNe,
	"gt":        OpGt,
	"gte":       OpGte,
	"lt":        OpLt,
	"lte":       OpLte,
	"in":        OpIn,
	"nin":       OpNin,
	"isnull":    OpIsNull,
	"isnotnull": OpIsNotNull,
}

// ParseQueryString parses the `query` parameter: comma-separated terms of
// the form field|value (equality), field|isnull, field|isnotnull, or
// field|operator|value. For in/nin the value is itself comma-split.
func ParseQueryString(queryStr string) ([]QueryFilter, error) {
	if queryStr == "" {
		return nil, nil
	}

	var filters []QueryFilter
	for _, term := range strings.Split(queryStr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		filter, err := parseFilterTerm(term)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}

	return filters, nil
}

func parseFilterTerm(term string) (QueryFilter, error) {
	parts := strings.Split(term, "|")

	switch len(parts) {
	case 2:
		// Either a null check or shorthand equality.
		op := strings.ToLower(parts[1])
		if op == "isnull" || op == "isnotnull" {
			return QueryFilter{Field: parts[0], Operator: QueryOperator(op)}, nil
		}
		return QueryFilter{Field: parts[0], Operator: OpEq, Value: parts[1]}, nil

	case 3:
		op, ok := operators[strings.ToLower(parts[1])]
		if !ok {
			return QueryFilter{}, fmt.Errorf("invalid operator: %s", strings.ToLower(parts[1]))
		}

		var value interface{} = parts[2]
		if op == OpIn || op == OpNin {
			value = strings.Split(parts[2], ",")
		}
		return QueryFilter{Field: parts[0], Operator: op, Value: value}, nil

	default:
		return QueryFilter{}, fmt.Errorf("invalid query format: %s (expected field|value or field|operator|value)", term)
	}
}

// ParseOrderString parses the `order` parameter: comma-separated
// field|direction terms.
func ParseOrderString(orderStr string) ([]OrderClause, error) {
	if orderStr == "" {
		return nil, nil
	}

	var orders []OrderClause
	for _, term := range strings.Split(orderStr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		parts := strings.Split(term, "|")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid order format: %s (expected field|direction)", term)
		}

		direction := strings.ToLower(parts[1])
		if direction != "asc" && direction != "desc" {
			return nil, fmt.Errorf("invalid order direction: %s (expected asc or desc)", direction)
		}

		orders = append(orders, OrderClause{Field: parts[0], Direction: OrderDirection(direction)})
	}

	return orders, nil
}

// ValidateFilterFields rejects filters on fields outside allowedFields.
// Field names flow into SQL, so each handler pins its own allow-list.
func ValidateFilterFields(filters []QueryFilter, allowedFields []string) error {
	allowed := fieldSet(allowedFields)
	for _, filter := range filters {
		if !allowed[filter.Field] {
			return fmt.Errorf("invalid query field: %s (valid fields: %s)", filter.Field, strings.Join(allowedFields, ", "))
		}
	}
	return nil
}

// ValidateOrderFields rejects order clauses on fields outside allowedFields.
func ValidateOrderFields(orders []OrderClause, allowedFields []string) error {
	allowed := fieldSet(allowedFields)
	for _, order := range orders {
		if !allowed[order.Field] {
			return fmt.Errorf("invalid order field: %s (valid fields: %s)", order.Field, strings.Join(allowedFields, ", "))
		}
	}
	return nil
}

func fieldSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

package api

import (
	"net/url"
	"sort"
	"strings"

	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// Query-string keys for sorting. Both forms may repeat.
const (
	sortKey     = "q[s]"
	sortListKey = "q[s][]"
)

// ParseTaskQuery reads the ransack-style listing grammar:
//
//	q[title_cont]=note        substring filter
//	q[title_eq]=Hold the door exact filter
//	q[s]=title desc           sort key, direction optional (default asc)
//	q[s][]=...                additional sort keys, applied in order
//
// Keys or values that do not form a valid term are skipped and returned in
// ignored so the caller can log them. Parsing never fails.
func ParseTaskQuery(values url.Values) (query domain.TaskQuery, ignored []string) {
	for _, key := range []string{sortKey, sortListKey} {
		for _, v := range values[key] {
			s, ok := parseSortTerm(v)
			if !ok {
				ignored = append(ignored, key+"="+v)
				continue
			}
			query.Sorts = append(query.Sorts, s)
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == sortKey || key == sortListKey {
			continue
		}
		if !strings.HasPrefix(key, "q[") || !strings.HasSuffix(key, "]") {
			continue
		}

		predicate := strings.TrimSuffix(strings.TrimPrefix(key, "q["), "]")
		field, op, ok := parsePredicate(predicate)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		for _, v := range values[key] {
			if strings.TrimSpace(v) == "" {
				ignored = append(ignored, key)
				continue
			}
			query.Filters = append(query.Filters, domain.TaskFilter{Field: field, Op: op, Value: v})
		}
	}

	return query, ignored
}

// parsePredicate splits "title_cont" into a filterable field and operator.
func parsePredicate(predicate string) (domain.TaskField, domain.FilterOp, bool) {
	i := strings.LastIndexByte(predicate, '_')
	if i <= 0 || i == len(predicate)-1 {
		return "", "", false
	}

	field, ok := domain.ParseTaskField(predicate[:i])
	if !ok || !field.Filterable() {
		return "", "", false
	}
	op, ok := domain.ParseFilterOp(predicate[i+1:])
	if !ok {
		return "", "", false
	}
	return field, op, true
}

// parseSortTerm parses "title", "title asc" or "title DESC".
func parseSortTerm(term string) (domain.TaskSort, bool) {
	parts := strings.Fields(term)
	if len(parts) == 0 || len(parts) > 2 {
		return domain.TaskSort{}, false
	}

	field, ok := domain.ParseTaskField(parts[0])
	if !ok {
		return domain.TaskSort{}, false
	}

	dir := domain.SortAsc
	if len(parts) == 2 {
		if dir, ok = domain.ParseSortDirection(parts[1]); !ok {
			return domain.TaskSort{}, false
		}
	}
	return domain.TaskSort{Field: field, Direction: dir}, true
}

package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder selects how Sort orders currencies.
type SortOrder string

const (
	NameAsc  SortOrder = "name-asc"
	NameDesc SortOrder = "name-desc"
	RateAsc  SortOrder = "rate-asc"
	RateDesc SortOrder = "rate-desc"
)

// SortOrders lists the supported orders.
var SortOrders = []SortOrder{NameAsc, NameDesc, RateAsc, RateDesc}

// ParseSortOrder validates s as a SortOrder. An empty string means NameAsc.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return NameAsc, nil
	}
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(SortOrders, order) {
		return "", fmt.Errorf("unknown sort order %q (want one of %v)", s, SortOrders)
	}
	return order, nil
}

// Search returns the currencies whose code or name contains keyword,
// ignoring case. An empty keyword returns list unchanged.
func Search(list []Currency, keyword string) []Currency {
	if keyword == "" {
		return list
	}
	keyword = strings.ToLower(keyword)

	var out []Currency
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Code), keyword) ||
			strings.Contains(strings.ToLower(c.Name), keyword) {
			out = append(out, c)
		}
	}
	return out
}

// Sort returns a sorted copy of list. Names are compared with English
// collation; ties keep their input order. An unknown order returns an
// unsorted copy.
func Sort(list []Currency, order SortOrder) []Currency {
	out := slices.Clone(list)
	col := collate.New(language.English)

	var compare func(a, b Currency) int
	switch order {
	case NameAsc:
		compare = func(a, b Currency) int { return col.CompareString(a.Name, b.Name) }
	case NameDesc:
		compare = func(a, b Currency) int { return col.CompareString(b.Name, a.Name) }
	case RateAsc:
		compare = func(a, b Currency) int { return cmp.Compare(a.Rate, b.Rate) }
	case RateDesc:
		compare = func(a, b Currency) int { return cmp.Compare(b.Rate, a.Rate) }
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}

package domain

import (
	"strings"
	"time"
)

// SearchWindow selects how far back the item search looks, relative to now.
type SearchWindow string

const (
	SearchWindowAll       SearchWindow = "all"
	SearchWindowDay       SearchWindow = "1d"
	SearchWindowWeek      SearchWindow = "1w"
	SearchWindowMonth     SearchWindow = "1m"
	SearchWindowSixMonths SearchWindow = "6m"
)

// SearchField selects which text field a free-text query matches against.
type SearchField string

const (
	SearchFieldItemName  SearchField = "itemName"
	SearchFieldCreatedBy SearchField = "createdBy"
)

// ItemSearchCriteria carries the optional back-office search axes. A zero
// value on any axis means "no constraint on this axis".
type ItemSearchCriteria struct {
	Window     SearchWindow
	SellStatus SellStatus
	Field      SearchField
	Query      string
}

// ItemPredicate is one boolean filter over a catalog item. Predicates present
// in a search are conjoined; an empty predicate set matches everything.
type ItemPredicate func(CatalogItem) bool

// WindowCutoff maps the window token to its lookback cutoff. The second
// return is false when the token imposes no date constraint.
func WindowCutoff(window SearchWindow, now time.Time) (time.Time, bool) {
	switch window {
	case SearchWindowDay:
		return now.AddDate(0, 0, -1), true
	case SearchWindowWeek:
		return now.AddDate(0, 0, -7), true
	case SearchWindowMonth:
		return now.AddDate(0, -1, 0), true
	case SearchWindowSixMonths:
		return now.AddDate(0, -6, 0), true
	default:
		return time.Time{}, false
	}
}

// SearchPredicates lowers the criteria into zero or more predicates. Each
// absent axis contributes nothing; text matching is a case-sensitive
// substring check.
func SearchPredicates(criteria ItemSearchCriteria, now time.Time) []ItemPredicate {
	var predicates []ItemPredicate

	if cutoff, ok := WindowCutoff(criteria.Window, now); ok {
		predicates = append(predicates, func(item CatalogItem) bool {
			return item.CreatedAt.After(cutoff)
		})
	}

	if criteria.SellStatus != "" {
		want := criteria.SellStatus
		predicates = append(predicates, func(item CatalogItem) bool {
			return item.SellStatus == want
		})
	}

	if query := criteria.Query; query != "" {
		switch criteria.Field {
		case SearchFieldItemName:
			predicates = append(predicates, func(item CatalogItem) bool {
				return strings.Contains(item.Name, query)
			})
		case SearchFieldCreatedBy:
			predicates = append(predicates, func(item CatalogItem) bool {
				return strings.Contains(item.CreatedBy, query)
			})
		}
	}

	return predicates
}

// MatchesAll reports whether the item satisfies every predicate.
func MatchesAll(item CatalogItem, predicates []ItemPredicate) bool {
	for _, predicate := range predicates {
		if !predicate(item) {
			return false
		}
	}
	return true
}

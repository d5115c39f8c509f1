package pickup

import (
	"sort"

	"donorlift/internal/geo"
)

// Filter narrows a pickup request listing. Observer plus RadiusKm turns on
// proximity filtering; Status and Priority are exact-match filters when set.
type Filter struct {
	Status   Status
	Priority Priority
	Observer *geo.Point
	RadiusKm float64
	Limit    int
}

// ListItem is one listing row: the request plus advisory distance and travel
// time, populated only when the filter carried an observer location.
type ListItem struct {
	Request          *Request `json:"request"`
	DistanceKm       *float64 `json:"distanceKm,omitempty"`
	EstimatedMinutes *int     `json:"estimatedTravelMinutes,omitempty"`
}

// BuildListing applies the proximity filter, ordering, limit, and travel
// annotations to a pre-filtered candidate set.
//
// When a radius filter is requested, candidates with no coordinates are
// discarded rather than defaulted to "nearby": surfacing arbitrarily distant
// unlocatable requests would break what operators expect of a radius filter.
// The radius decision and the reported distance use the same DistanceKm, so
// the filter always agrees with what the caller sees.
func BuildListing(candidates []*Request, filter Filter) []ListItem {
	items := make([]ListItem, 0, len(candidates))
	for _, req := range candidates {
		item := ListItem{Request: req}
		if filter.Observer != nil {
			if req.Coordinates == nil {
				continue
			}
			d := geo.DistanceKm(*filter.Observer, *req.Coordinates)
			if filter.RadiusKm > 0 && d > filter.RadiusKm {
				continue
			}
			minutes := geo.TravelMinutes(d)
			item.DistanceKm = &d
			item.EstimatedMinutes = &minutes
		}
		items = append(items, item)
	}

	// Priority descending, then most recently submitted first.
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Request.Priority.Rank(), items[j].Request.Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return items[i].Request.Metadata.SubmittedAt.After(items[j].Request.Metadata.SubmittedAt)
	})

	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items
}

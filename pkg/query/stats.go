package query

import (
	"sort"

	"github.com/aretw0/hockey/pkg/core"
)

// EventStats aggregates the markers of one event type.
type EventStats struct {
	EventName string `json:"event_name"`
	Count     int    `json:"count"`
	Frames    int    `json:"frames"`
}

// Summary aggregates a marker sequence.
type Summary struct {
	Total     int          `json:"total"`
	WithNotes int          `json:"with_notes"`
	Frames    int          `json:"frames"`
	Events    []EventStats `json:"events"`
}

// Summarize counts markers per event type, sorted by descending count then name.
func Summarize(markers []core.Marker) Summary {
	byName := make(map[string]*EventStats)
	s := Summary{Total: len(markers)}
	for _, m := range markers {
		es, ok := byName[m.EventName]
		if !ok {
			es = &EventStats{EventName: m.EventName}
			byName[m.EventName] = es
		}
		es.Count++
		es.Frames += m.Duration()
		s.Frames += m.Duration()
		if hasNote(m) {
			s.WithNotes++
		}
	}
	s.Events = sortedEvents(byName)
	return s
}

// Merge folds several summaries into one.
func Merge(summaries ...Summary) Summary {
	out := Summary{}
	byName := make(map[string]*EventStats)
	for _, s := range summaries {
		out.Total += s.Total
		out.WithNotes += s.WithNotes
		out.Frames += s.Frames
		for _, es := range s.Events {
			acc, ok := byName[es.EventName]
			if !ok {
				acc = &EventStats{EventName: es.EventName}
				byName[es.EventName] = acc
			}
			acc.Count += es.Count
			acc.Frames += es.Frames
		}
	}
	out.Events = sortedEvents(byName)
	return out
}

func sortedEvents(byName map[string]*EventStats) []EventStats {
	events := make([]EventStats, 0, len(byName))
	for _, es := range byName {
		events = append(events, *es)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Count != events[j].Count {
			return events[i].Count > events[j].Count
		}
		return events[i].EventName < events[j].EventName
	})
	return events
}

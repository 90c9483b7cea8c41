// Package board groups pending tasks into the three fixed urgency lanes
// shown on the priority board.
package board

import (
	"sort"
	"strings"

	"github.com/emploai/emploai-server/internal/models"
)

// Lane is a canonical priority bucket. Raw priority strings are free-form
// for historical reasons; they are normalized here, at the read edge.
type Lane string

const (
	LaneP1   Lane = "P1"
	LaneP2   Lane = "P2"
	LaneP3   Lane = "P3"
	LaneNone Lane = "" // unclassified: rendered in no lane
)

// ParsePriority maps a raw priority string to a canonical lane.
// Case-insensitive: p1|high -> P1, p2|medium -> P2, p3|low -> P3. Literal
// P1/P2/P3 pass through via the same match. Anything else, including the
// empty string, is unclassified.
func ParsePriority(raw string) Lane {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "p1", "high":
		return LaneP1
	case "p2", "medium":
		return LaneP2
	case "p3", "low":
		return LaneP3
	}
	return LaneNone
}

func rank(l Lane) int {
	switch l {
	case LaneP1:
		return 0
	case LaneP2:
		return 1
	case LaneP3:
		return 2
	}
	return 3 // unclassified sorts last
}

// Lanes holds the grouped board. Unclassified tasks are kept in their own
// bucket so callers can decide whether to render them.
type Lanes struct {
	P1           []models.Task `json:"p1"`
	P2           []models.Task `json:"p2"`
	P3           []models.Task `json:"p3"`
	Unclassified []models.Task `json:"unclassified"`
}

// Group buckets tasks into lanes and sorts each lane by priority rank
// ascending, then creation time descending (newest first). Sorting is
// idempotent: regrouping grouped output yields the same order.
func Group(tasks []models.Task) Lanes {
	var lanes Lanes
	for _, t := range tasks {
		switch ParsePriority(t.Priority) {
		case LaneP1:
			lanes.P1 = append(lanes.P1, t)
		case LaneP2:
			lanes.P2 = append(lanes.P2, t)
		case LaneP3:
			lanes.P3 = append(lanes.P3, t)
		default:
			lanes.Unclassified = append(lanes.Unclassified, t)
		}
	}
	sortLane(lanes.P1)
	sortLane(lanes.P2)
	sortLane(lanes.P3)
	sortLane(lanes.Unclassified)
	return lanes
}

func sortLane(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := rank(ParsePriority(tasks[i].Priority)), rank(ParsePriority(tasks[j].Priority))
		if ri != rj {
			return ri < rj
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

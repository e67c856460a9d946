package reminder

import (
	"sort"
	"time"
)

// Group names produced by Classify.
const (
	GroupToday     = "today"
	GroupUpcoming  = "upcoming"
	GroupCompleted = "completed"
)

// GroupOrder is the display order of groups.
var GroupOrder = []string{GroupToday, GroupUpcoming, GroupCompleted}

// Groups maps a group name to its ordered reminders. Empty groups are absent.
type Groups map[string][]Reminder

// Group is one named, non-empty bucket.
type Group struct {
	Name  string
	Items []Reminder
}

// Ordered returns the non-empty groups in display order.
func (g Groups) Ordered() []Group {
	out := make([]Group, 0, len(g))
	for _, name := range GroupOrder {
		if items := g[name]; len(items) > 0 {
			out = append(out, Group{Name: name, Items: items})
		}
	}
	return out
}

// Classify buckets reminders relative to now. Completed reminders go to
// "completed"; incomplete ones due today or already overdue go to "today";
// the rest go to "upcoming". today and upcoming are sorted by due date,
// completed by most recent update. items is not modified.
//
// Grouping a single server page is only meaningful for fully loaded data;
// paginated views filter by completion on the server instead.
func Classify(now time.Time, items []Reminder) Groups {
	groups := Groups{}
	for _, r := range items {
		name := classifyOne(now, r)
		groups[name] = append(groups[name], r)
	}

	for _, name := range []string{GroupToday, GroupUpcoming} {
		bucket := groups[name]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].DueDate.Before(bucket[j].DueDate.Time)
		})
	}
	completed := groups[GroupCompleted]
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].UpdatedAt.After(completed[j].UpdatedAt.Time)
	})

	return groups
}

func classifyOne(now time.Time, r Reminder) string {
	if r.Completed {
		return GroupCompleted
	}
	due := r.DueDate.In(now.Location())
	if !due.After(now) || sameDay(due, now) {
		return GroupToday
	}
	return GroupUpcoming
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

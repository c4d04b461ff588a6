package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/coursedesk/internal/model"
)

// rankCourses filters courses by query and orders them by closeness.
// A title containing the query ranks first; otherwise the nearest word by
// edit distance counts, within a tolerance that grows with query length.
func rankCourses(courses []model.Course, query string) []model.Course {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return courses
	}
	tolerance := max(1, len(q)/3)

	type scored struct {
		course model.Course
		score  int
	}
	var hits []scored
	for _, c := range courses {
		s, ok := matchScore(c, q, tolerance)
		if ok {
			hits = append(hits, scored{c, s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	out := make([]model.Course, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.course)
	}
	return out
}

func matchScore(c model.Course, q string, tolerance int) (int, bool) {
	title := strings.ToLower(c.Title)
	if strings.Contains(title, q) {
		return 0, true
	}
	best := -1
	for _, w := range strings.Fields(title + " " + strings.ToLower(c.TeacherName)) {
		d := levenshtein.ComputeDistance(w, q)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 || best > tolerance {
		return 0, false
	}
	return best, true
}

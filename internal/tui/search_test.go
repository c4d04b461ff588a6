package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/model"
)

func titles(cs []model.Course) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Title)
	}
	return out
}

func TestRankCourses(t *testing.T) {
	courses := []model.Course{
		{ID: 1, Title: "Linear Algebra", TeacherName: "tess"},
		{ID: 2, Title: "Organic Chemistry", TeacherName: "tess"},
		{ID: 3, Title: "Algebraic Topology", TeacherName: "ray"},
		{ID: 4, Title: "Poetry Workshop", TeacherName: "ray"},
	}

	require.Equal(t, titles(courses), titles(rankCourses(courses, "  ")))
	require.Equal(t, []string{"Linear Algebra", "Algebraic Topology"}, titles(rankCourses(courses, "ALGEBRA")))
	// one typo still finds the title word
	require.Equal(t, []string{"Organic Chemistry"}, titles(rankCourses(courses, "chemestry")))
	// teacher names match too
	require.Equal(t, []string{"Algebraic Topology", "Poetry Workshop"}, titles(rankCourses(courses, "ray")))
	require.Empty(t, rankCourses(courses, "xylophone"))
}

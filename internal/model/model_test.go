package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCourseIsEnrolled(t *testing.T) {
	yes, no := true, false
	require.False(t, Course{}.IsEnrolled())
	require.False(t, Course{Enrolled: &no}.IsEnrolled())
	require.True(t, Course{Enrolled: &yes}.IsEnrolled())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("teacher")
	require.NoError(t, err)
	require.Equal(t, RoleTeacher, r)

	_, err = ParseRole("admin")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantErr string
	}{
		{name: "login ok", in: Credentials{Username: "alice", Password: "x"}},
		{name: "login missing password", in: Credentials{Username: "alice"}, wantErr: "password is required"},
		{name: "login short username", in: Credentials{Username: "al", Password: "x"}},
		{name: "login missing username", in: Credentials{Password: "x"}, wantErr: "username is required"},
		{name: "register bad role", in: Registration{Username: "alice", Password: "secret1", Role: "admin"}, wantErr: "role must be one of: teacher student"},
		{name: "register ok", in: Registration{Username: "alice", Password: "secret1", Role: RoleStudent}},
		{name: "course missing title", in: NewCourse{Description: "d"}, wantErr: "title is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

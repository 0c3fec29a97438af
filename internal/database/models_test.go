package database_test

import (
	"database/sql"
	"testing"

	"github.com/iromess/chatmixbot/internal/database"
)

func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user database.User
		want string
	}{
		{
			name: "first name preferred",
			user: database.User{FirstName: nullStr("Ivan"), Username: nullStr("ivan")},
			want: "Ivan",
		},
		{
			name: "username fallback",
			user: database.User{Username: nullStr("ivan")},
			want: "ivan",
		},
		{
			name: "generic fallback",
			user: database.User{},
			want: "a user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user database.User
		want string
	}{
		{
			name: "full label",
			user: database.User{Username: nullStr("ivan"), FirstName: nullStr("Ivan"), LastName: nullStr("Petrov")},
			want: "ivan (Ivan Petrov)",
		},
		{
			name: "first name only",
			user: database.User{Username: nullStr("ivan"), FirstName: nullStr("Ivan")},
			want: "ivan (Ivan)",
		},
		{
			name: "no username",
			user: database.User{FirstName: nullStr("Ivan")},
			want: "no_username (Ivan)",
		},
		{
			name: "nothing at all",
			user: database.User{},
			want: "no_username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.user.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

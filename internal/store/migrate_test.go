package store

import "testing"

func TestPgx5URL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/bible?sslmode=disable", "pgx5://u:p@localhost:5432/bible?sslmode=disable"},
		{"postgresql://localhost/bible", "pgx5://localhost/bible"},
		{"pgx5://localhost/bible", "pgx5://localhost/bible"},
	}
	for _, tt := range tests {
		if got := pgx5URL(tt.in); got != tt.want {
			t.Errorf("pgx5URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

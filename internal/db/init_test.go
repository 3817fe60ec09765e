package db_test

import (
	"strings"
	"testing"

	"github.com/atinyakov/codemonkey/internal/db"
)

func TestInitPostgres_Unreachable(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"closed port", "postgres://codemonkey@127.0.0.1:1/codemonkey?sslmode=disable&connect_timeout=1", "ping postgres"},
		{"bad key-value DSN", "host=127.0.0.1 port=1 sslmode=disable connect_timeout=1", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.InitPostgres(tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

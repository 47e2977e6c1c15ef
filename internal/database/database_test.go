// internal/database/database_test.go
//
// Unit-tests for database helpers using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/ezzy1337/Pathos/internal/settings"
)

func TestHealth(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	if err := Health(context.Background(), db); err != nil {
		t.Fatalf("Health error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestOpenClosesPoolOnPingFailure(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("pingfail",
		sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	mock.ExpectPing().WillReturnError(errSomePing)
	mock.ExpectClose()

	if _, err := open("sqlmock", "pingfail", settings.Database{MaxOpen: 2, MaxIdle: 1}); err == nil {
		t.Fatal("expected ping error, got nil")
	}
	// ExpectClose being met proves the failed pool was released.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

var errSomePing = errors.New("ping refused")

func TestHealthPropagatesFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1`)).
		WillReturnError(context.DeadlineExceeded)

	if err := Health(context.Background(), db); err == nil {
		t.Fatal("expected error, got nil")
	}
}

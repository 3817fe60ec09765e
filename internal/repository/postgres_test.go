package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/codemonkey/internal/models"
)

const verifyQuery = `SELECT i.id, i.username, i.name, i.email, i.premium, i.created_at`

func setupIdentityMock(t *testing.T) (*PostgresIdentityRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresIdentityRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestPostgresVerify_Found(t *testing.T) {
	repo, mock, cleanup := setupIdentityMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(verifyQuery)).
		WithArgs("admin", "12345").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "email", "premium", "created_at"}).
			AddRow("1", "admin", "Admin User", "admin@example.com", true, "2023-01-01"))

	got, err := repo.Verify(context.Background(), "admin", "12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.DefaultFixtures().Identities[0]
	if got != want {
		t.Errorf("Verify = %+v; want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresVerify_NotFound(t *testing.T) {
	repo, mock, cleanup := setupIdentityMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(verifyQuery)).
		WithArgs("admin", "wrong").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "email", "premium", "created_at"}))

	_, err := repo.Verify(context.Background(), "admin", "wrong")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresVerify_Error(t *testing.T) {
	repo, mock, cleanup := setupIdentityMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(verifyQuery)).
		WithArgs("admin", "12345").
		WillReturnError(errors.New("query failed"))

	_, err := repo.Verify(context.Background(), "admin", "12345")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestPostgresSeed(t *testing.T) {
	repo, mock, cleanup := setupIdentityMock(t)
	defer cleanup()

	fx := models.Fixtures{
		Identities:  []models.Identity{models.DefaultFixtures().Identities[2]},
		Credentials: models.Credentials{"user": "12345"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identities`)).
		WithArgs("3", "user", "Regular User", "user@example.com", false, "2023-03-20").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO credentials (username, secret)`)).
		WithArgs("user", "12345").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Seed(context.Background(), fx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSeed_RollsBackOnError(t *testing.T) {
	repo, mock, cleanup := setupIdentityMock(t)
	defer cleanup()

	fx := models.Fixtures{Identities: []models.Identity{models.DefaultFixtures().Identities[0]}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identities`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	if err := repo.Seed(context.Background(), fx); err == nil {
		t.Error("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

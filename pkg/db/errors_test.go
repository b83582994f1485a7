package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err, "users_username_key") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(err, "users_email_key") {
		t.Fatal("did not expect other constraint to match")
	}
	if IsUniqueViolation(errors.New("connection reset"), "") {
		t.Fatal("plain errors are not unique violations")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a unique violation")
	}
}

func TestIsForeignKeyViolationPostgres(t *testing.T) {
	err := &pgconn.PgError{Code: "23503"}
	if !IsForeignKeyViolation(err) {
		t.Fatal("expected foreign key violation")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not a foreign key violation")
	}
}

func TestLibPQErrorsClassify(t *testing.T) {
	unique := fmt.Errorf("goose up: %w", &pq.Error{Code: "23505", Constraint: "products_name_key"})
	if !IsUniqueViolation(unique, "products_name_key") {
		t.Fatal("expected lib/pq unique violation to match its constraint")
	}
	if IsUniqueViolation(unique, "users_email_key") {
		t.Fatal("did not expect other constraint to match")
	}
	if !IsForeignKeyViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("expected lib/pq foreign key violation")
	}
}

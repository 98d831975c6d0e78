package postgres

import (
	"database/sql"
	"testing"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
)

func TestNullString(t *testing.T) {
	if got := nullString(""); got.Valid {
		t.Fatal("expected invalid for empty string")
	}
	got := nullString("Ден на опита")
	if !got.Valid || got.String != "Ден на опита" {
		t.Fatalf("unexpected null string: %+v", got)
	}
}

func TestIntOrNil(t *testing.T) {
	if got := intOrNil(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	got := intOrNil(sql.NullInt64{Int64: 7, Valid: true})
	if got == nil || *got != 7 {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestStatColumn(t *testing.T) {
	for _, stat := range dailystat.AllStatTypes {
		column, err := statColumn(stat)
		if err != nil {
			t.Fatalf("stat %s: %v", stat, err)
		}
		if column != string(stat) {
			t.Fatalf("unexpected column for %s: %s", stat, column)
		}
	}

	if _, err := statColumn("charisma"); err == nil {
		t.Fatal("expected error for unknown stat")
	}
}

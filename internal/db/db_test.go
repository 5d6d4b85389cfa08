package db

import (
	"testing"

	"blogicum/internal/config"
	"blogicum/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("unknown driver should fail")
	}
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	conn, err := OpenMemory(t.Name())
	if err != nil {
		t.Fatalf("open memory db failed: %v", err)
	}
	if err := SeedCategories(conn); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := SeedCategories(conn); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var categories, locations int64
	conn.Model(&models.Category{}).Count(&categories)
	conn.Model(&models.Location{}).Count(&locations)
	if categories != 3 {
		t.Fatalf("categories want 3 got %d", categories)
	}
	if locations != 2 {
		t.Fatalf("locations want 2 got %d", locations)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("TestA/sub case"); got != "TestA_sub_case" {
		t.Fatalf("unexpected sanitized name %s", got)
	}
	if got := sanitizeName(""); got != "blogicum" {
		t.Fatalf("empty name want blogicum got %s", got)
	}
}

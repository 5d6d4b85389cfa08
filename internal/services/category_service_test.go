package services

import (
	"errors"
	"testing"

	"blogicum/internal/models"
)

func TestGetPublishedCategory(t *testing.T) {
	env := setupServices(t)
	got, err := env.categories.GetPublished("active")
	if err != nil || got.ID != env.active.ID {
		t.Fatalf("want active category got %v %v", got, err)
	}
	for _, slug := range []string{"hidden", "missing"} {
		if _, err := env.categories.GetPublished(slug); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: want ErrNotFound got %v", slug, err)
		}
	}
}

func TestChoicesAreCached(t *testing.T) {
	env := setupServices(t)
	first, err := env.categories.Choices()
	if err != nil {
		t.Fatalf("choices failed: %v", err)
	}
	if len(first.Categories) != 1 {
		t.Fatalf("only published categories are offered, got %d", len(first.Categories))
	}

	if err := env.db.Create(&models.Category{Slug: "fresh", Title: "Fresh", IsPublished: true}).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	cached, _ := env.categories.Choices()
	if len(cached.Categories) != 1 {
		t.Fatalf("cached choices expected, got %d", len(cached.Categories))
	}
}

func TestChoicesForKeepsCurrentHiddenCategory(t *testing.T) {
	env := setupServices(t)
	location := &models.Location{Name: "隐藏地点"}
	if err := env.db.Create(location).Error; err != nil {
		t.Fatalf("create location failed: %v", err)
	}
	post := &models.Post{Category: env.hidden, Location: location}

	choices, err := env.categories.ChoicesFor(post)
	if err != nil {
		t.Fatalf("choices failed: %v", err)
	}
	if len(choices.Categories) != 2 || choices.Categories[1].ID != env.hidden.ID {
		t.Fatalf("current hidden category should be offered, got %+v", choices.Categories)
	}
	if len(choices.Locations) != 1 || choices.Locations[0].ID != location.ID {
		t.Fatalf("current hidden location should be offered, got %+v", choices.Locations)
	}

	// 缓存的公共选项不受影响
	plain, _ := env.categories.Choices()
	if len(plain.Categories) != 1 || len(plain.Locations) != 0 {
		t.Fatalf("cached choices must stay published-only, got %d/%d", len(plain.Categories), len(plain.Locations))
	}

	same, _ := env.categories.ChoicesFor(&models.Post{Category: env.active})
	if len(same.Categories) != 1 {
		t.Fatalf("published category must not be duplicated, got %d", len(same.Categories))
	}
}

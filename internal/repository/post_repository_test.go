package repository

import (
	"fmt"
	"testing"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/models"
	"blogicum/internal/policy"

	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	posts    *GormPostRepository
	comments *GormCommentRepository
	author   *models.User
	other    *models.User
	active   *models.Category
	hidden   *models.Category
}

func setupPostRepositoryTest(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.OpenMemory(t.Name())
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	f := &fixture{
		db:       conn,
		posts:    NewPostRepository(conn),
		comments: NewCommentRepository(conn),
		author:   &models.User{Username: "author", Password: "x"},
		other:    &models.User{Username: "other", Password: "x"},
		active:   &models.Category{Slug: "active", Title: "Active", IsPublished: true},
		hidden:   &models.Category{Slug: "hidden", Title: "Hidden", IsPublished: false},
	}
	for _, u := range []*models.User{f.author, f.other} {
		if err := conn.Create(u).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	for _, c := range []*models.Category{f.active, f.hidden} {
		if err := conn.Create(c).Error; err != nil {
			t.Fatalf("create category failed: %v", err)
		}
	}
	return f
}

func (f *fixture) createPost(t *testing.T, title string, author *models.User, category *models.Category, published bool, pubDate time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	if err := f.posts.Create(post); err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	return post
}

func (f *fixture) createComment(t *testing.T, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	if err := f.comments.Create(comment); err != nil {
		t.Fatalf("create comment failed: %v", err)
	}
	return comment
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestListPublicOnlyAppliesVisibilityConjunction(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()

	f.createPost(t, "visible", f.author, f.active, true, now.Add(-time.Hour))
	f.createPost(t, "no-category", f.author, nil, true, now.Add(-2*time.Hour))
	f.createPost(t, "unpublished", f.author, f.active, false, now.Add(-time.Hour))
	f.createPost(t, "future", f.author, f.active, true, now.Add(time.Hour))
	f.createPost(t, "hidden-category", f.author, f.hidden, true, now.Add(-time.Hour))

	page, err := f.posts.List(PostListFilter{Scope: AllPosts(), PublicOnly: true, Now: now, Page: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := titles(page.Posts)
	if len(got) != 2 || got[0] != "visible" || got[1] != "no-category" {
		t.Fatalf("unexpected public posts: %v", got)
	}
	if page.Total != 2 {
		t.Fatalf("total want 2 got %d", page.Total)
	}

	own, err := f.posts.List(PostListFilter{Scope: ByAuthor(f.author.ID), Page: 1})
	if err != nil {
		t.Fatalf("list own failed: %v", err)
	}
	if own.Total != 5 {
		t.Fatalf("author scope without visibility want 5 got %d", own.Total)
	}
}

func TestListMatchesPolicyPredicate(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()
	categories := []*models.Category{nil, f.active, f.hidden}
	offsets := []time.Duration{-48 * time.Hour, -time.Minute, time.Minute, 24 * time.Hour}

	i := 0
	for _, category := range categories {
		for _, published := range []bool{true, false} {
			for _, offset := range offsets {
				f.createPost(t, fmt.Sprintf("p%02d", i), f.author, category, published, now.Add(offset))
				i++
			}
		}
	}

	page, err := f.posts.List(PostListFilter{Scope: AllPosts(), PublicOnly: true, Now: now, Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	listed := make(map[uint]bool, len(page.Posts))
	for _, p := range page.Posts {
		listed[p.ID] = true
	}

	all, err := f.posts.List(PostListFilter{Scope: AllPosts(), Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all.Posts) != i {
		t.Fatalf("expected %d posts got %d", i, len(all.Posts))
	}
	for idx := range all.Posts {
		p := &all.Posts[idx]
		want := policy.IsVisible(policy.Viewer{UserID: f.other.ID}, p, now)
		if listed[p.ID] != want {
			t.Fatalf("post %s: query visibility %v, policy %v", p.Title, listed[p.ID], want)
		}
	}
}

func TestListOrdersByPubDateDescAndPreloads(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()
	f.createPost(t, "oldest", f.author, f.active, true, now.Add(-3*time.Hour))
	f.createPost(t, "newest", f.other, f.active, true, now.Add(-time.Hour))
	f.createPost(t, "middle", f.author, nil, true, now.Add(-2*time.Hour))

	page, err := f.posts.List(PostListFilter{Scope: AllPosts(), PublicOnly: true, Now: now, Page: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := titles(page.Posts)
	want := []string{"newest", "middle", "oldest"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order want %v got %v", want, got)
		}
	}
	if page.Posts[0].Author.Username != "other" {
		t.Fatalf("author should be preloaded, got %q", page.Posts[0].Author.Username)
	}
	if page.Posts[0].Category == nil || page.Posts[0].Category.Slug != "active" {
		t.Fatalf("category should be preloaded")
	}
	if page.Posts[1].Category != nil {
		t.Fatalf("post without category should have nil category")
	}
}

func TestListScopesByCategoryAndAuthor(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()
	f.createPost(t, "a-active", f.author, f.active, true, now.Add(-time.Hour))
	f.createPost(t, "o-active", f.other, f.active, true, now.Add(-time.Hour))
	f.createPost(t, "a-none", f.author, nil, true, now.Add(-time.Hour))

	byCategory, err := f.posts.List(PostListFilter{Scope: ByCategory(f.active.ID), PublicOnly: true, Now: now, Page: 1})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if byCategory.Total != 2 {
		t.Fatalf("category scope want 2 got %d", byCategory.Total)
	}

	byAuthor, err := f.posts.List(PostListFilter{Scope: ByAuthor(f.other.ID), PublicOnly: true, Now: now, Page: 1})
	if err != nil {
		t.Fatalf("list by author failed: %v", err)
	}
	if byAuthor.Total != 1 || byAuthor.Posts[0].Title != "o-active" {
		t.Fatalf("unexpected author scope %v", titles(byAuthor.Posts))
	}
}

func TestListCommentCounts(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()
	busy := f.createPost(t, "busy", f.author, nil, true, now.Add(-time.Hour))
	quiet := f.createPost(t, "quiet", f.author, nil, true, now.Add(-2*time.Hour))
	for i := 0; i < 3; i++ {
		f.createComment(t, busy, f.other, fmt.Sprintf("c%d", i))
	}

	page, err := f.posts.List(PostListFilter{Scope: AllPosts(), Page: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	counts := map[uint]int{}
	for _, p := range page.Posts {
		counts[p.ID] = p.CommentCount
	}
	if counts[busy.ID] != 3 {
		t.Fatalf("busy comment count want 3 got %d", counts[busy.ID])
	}
	if counts[quiet.ID] != 0 {
		t.Fatalf("quiet comment count want 0 got %d", counts[quiet.ID])
	}

	detail, err := f.posts.GetByID(busy.ID)
	if err != nil || detail == nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if detail.CommentCount != 3 {
		t.Fatalf("detail comment count want 3 got %d", detail.CommentCount)
	}
}

func TestListPaginationClampsToLastPage(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()
	for i := 0; i < 23; i++ {
		f.createPost(t, fmt.Sprintf("post-%02d", i), f.author, nil, true, now.Add(-time.Duration(i+1)*time.Minute))
	}

	first, err := f.posts.List(PostListFilter{Scope: AllPosts(), Page: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first.Posts) != DefaultPageSize || first.NumPages != 3 || first.Posts[0].Title != "post-00" {
		t.Fatalf("unexpected first page: n=%d pages=%d", len(first.Posts), first.NumPages)
	}

	overflow, err := f.posts.List(PostListFilter{Scope: AllPosts(), Page: 99})
	if err != nil {
		t.Fatalf("list overflow failed: %v", err)
	}
	if overflow.Number != 3 || len(overflow.Posts) != 3 {
		t.Fatalf("overflow should clamp to last page, got page=%d n=%d", overflow.Number, len(overflow.Posts))
	}
	if overflow.Posts[2].Title != "post-22" {
		t.Fatalf("last post want post-22 got %s", overflow.Posts[2].Title)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	f := setupPostRepositoryTest(t)
	post, err := f.posts.GetByID(12345)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post != nil {
		t.Fatalf("missing post should be nil")
	}
}

func TestDeleteCascadesComments(t *testing.T) {
	f := setupPostRepositoryTest(t)
	now := time.Now().UTC()
	doomed := f.createPost(t, "doomed", f.author, nil, true, now)
	kept := f.createPost(t, "kept", f.author, nil, true, now)
	f.createComment(t, doomed, f.other, "bye")
	f.createComment(t, doomed, f.author, "bye too")
	f.createComment(t, kept, f.other, "stay")

	if err := f.posts.Delete(doomed.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := f.posts.GetByID(doomed.ID); got != nil {
		t.Fatalf("post should be deleted")
	}
	count, err := f.comments.CountByPost(doomed.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("comments of deleted post want 0 got %d", count)
	}
	count, _ = f.comments.CountByPost(kept.ID)
	if count != 1 {
		t.Fatalf("comments of other post want 1 got %d", count)
	}

	if err := f.posts.Delete(doomed.ID); err == nil {
		t.Fatalf("deleting a missing post should fail")
	}
}

package services

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"testing"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/utils"

	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	now        time.Time
	mediaDir   string
	media      *MediaStorage
	posts      *PostService
	comments   *CommentService
	users      *UserService
	categories *CategoryService
	author     *models.User
	other      *models.User
	active     *models.Category
	hidden     *models.Category
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.OpenMemory(t.Name())
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}

	mediaCfg := config.Default().Media
	mediaCfg.Dir = t.TempDir()

	postRepo := repository.NewPostRepository(conn)
	commentRepo := repository.NewCommentRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	locationRepo := repository.NewLocationRepository(conn)
	cache, err := utils.NewTTLCache[*Choices](8)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	env := &testEnv{
		db:         conn,
		now:        now,
		mediaDir:   mediaCfg.Dir,
		media:      NewMediaStorage(mediaCfg),
		users:      NewUserService(repository.NewUserRepository(conn)),
		categories: NewCategoryService(categoryRepo, locationRepo, cache),
		author:     &models.User{Username: "author", Password: "x"},
		other:      &models.User{Username: "other", Password: "x"},
		active:     &models.Category{Slug: "active", Title: "Active", IsPublished: true},
		hidden:     &models.Category{Slug: "hidden", Title: "Hidden"},
	}
	env.media.now = clock
	env.posts = NewPostService(postRepo, categoryRepo, locationRepo, env.media, 10).WithClock(clock)
	env.comments = NewCommentService(postRepo, commentRepo).WithClock(clock)

	for _, u := range []*models.User{env.author, env.other} {
		if err := conn.Create(u).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	for _, c := range []*models.Category{env.active, env.hidden} {
		if err := conn.Create(c).Error; err != nil {
			t.Fatalf("create category failed: %v", err)
		}
	}
	return env
}

func (e *testEnv) createPost(t *testing.T, title string, input PostInput) *models.Post {
	t.Helper()
	input.Title = title
	if input.Text == "" {
		input.Text = "text of " + title
	}
	post, err := e.posts.Create(policy.ViewerFor(e.author), input)
	if err != nil {
		t.Fatalf("create post %q failed: %v", title, err)
	}
	return post
}

func (e *testEnv) published(t *testing.T, title string) *models.Post {
	t.Helper()
	return e.createPost(t, title, PostInput{
		PubDate:     e.now.Add(-time.Hour),
		IsPublished: true,
		CategoryID:  &e.active.ID,
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}
	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form failed: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

package services

import (
	"errors"
	"testing"
	"time"

	"blogicum/internal/policy"
)

func TestAddCommentRequiresVisiblePost(t *testing.T) {
	env := setupServices(t)
	draft := env.createPost(t, "draft", PostInput{PubDate: env.now.Add(-time.Hour)})

	if _, err := env.comments.Add(policy.Anonymous, draft.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous: want ErrForbidden got %v", err)
	}
	if _, err := env.comments.Add(policy.ViewerFor(env.other), draft.ID, "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("hidden post: want ErrNotFound got %v", err)
	}
	if _, err := env.comments.Add(policy.ViewerFor(env.author), draft.ID, "note to self"); err != nil {
		t.Fatalf("author should comment own draft: %v", err)
	}
	if _, err := env.comments.Add(policy.ViewerFor(env.other), 9999, "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing post: want ErrNotFound got %v", err)
	}
}

func TestCommentsListedOldestFirst(t *testing.T) {
	env := setupServices(t)
	post := env.published(t, "post")
	for _, text := range []string{"first", "second", "third"} {
		if _, err := env.comments.Add(policy.ViewerFor(env.other), post.ID, text); err != nil {
			t.Fatalf("add comment failed: %v", err)
		}
	}

	comments, err := env.comments.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(comments) != 3 || comments[0].Text != "first" || comments[2].Text != "third" {
		t.Fatalf("unexpected order %+v", comments)
	}
	if comments[0].Author.Username != "other" {
		t.Fatalf("author should be preloaded")
	}
}

func TestCommentMutationIsOwnerOnly(t *testing.T) {
	env := setupServices(t)
	post := env.published(t, "post")
	comment, err := env.comments.Add(policy.ViewerFor(env.other), post.ID, "original")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	if _, err := env.comments.Update(policy.ViewerFor(env.author), post.ID, comment.ID, "hijack"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("post author is not comment author: want ErrForbidden got %v", err)
	}
	if err := env.comments.Delete(policy.ViewerFor(env.author), post.ID, comment.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by non-owner: want ErrForbidden got %v", err)
	}

	updated, err := env.comments.Update(policy.ViewerFor(env.other), post.ID, comment.ID, "edited")
	if err != nil || updated.Text != "edited" {
		t.Fatalf("owner update failed: %v", err)
	}
	if err := env.comments.Delete(policy.ViewerFor(env.other), post.ID, comment.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := env.comments.Editable(policy.ViewerFor(env.other), post.ID, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted comment: want ErrNotFound got %v", err)
	}
}

func TestCommentMustBelongToPost(t *testing.T) {
	env := setupServices(t)
	first := env.published(t, "first")
	second := env.published(t, "second")
	comment, err := env.comments.Add(policy.ViewerFor(env.other), first.ID, "on first")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if _, err := env.comments.Editable(policy.ViewerFor(env.other), second.ID, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

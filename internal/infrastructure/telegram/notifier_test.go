package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestPublishDigestPostsForm(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		texts []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken123/sendMessage" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("chat_id") != "42" || r.PostForm.Get("parse_mode") != "Markdown" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		texts = append(texts, r.PostForm.Get("text"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := NewNotifier("token123", "42").WithEndpoint(server.URL, server.Client())
	if err := n.PublishDigest(context.Background(), "*Review authenticity alert*\nGrade: F"); err != nil {
		t.Fatalf("PublishDigest error: %v", err)
	}
	if len(texts) != 1 || !strings.Contains(texts[0], "Grade: F") {
		t.Fatalf("unexpected messages: %v", texts)
	}
}

func TestPublishDigestReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok": false, "description": "chat not found"}`))
	}))
	defer server.Close()

	n := NewNotifier("t", "c").WithEndpoint(server.URL, server.Client())
	err := n.PublishDigest(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "42").PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("line of text\n", 10)
	parts := splitMessage(text, 30)
	if strings.Join(parts, "") != text {
		t.Fatalf("split lost content")
	}
	for _, p := range parts {
		if len(p) > 30 {
			t.Fatalf("part exceeds limit: %d", len(p))
		}
	}

	long := strings.Repeat("é", 20)
	parts = splitMessage(long, 7)
	if strings.Join(parts, "") != long {
		t.Fatalf("split of long line lost content")
	}
	for _, p := range parts {
		if len(p) > 7 || !strings.HasPrefix(p, "é") {
			t.Fatalf("part %q breaks a rune or exceeds limit", p)
		}
	}
}

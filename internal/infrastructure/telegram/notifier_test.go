package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	t.Parallel()

	forms := make(chan url.Values, 1)
	paths := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		paths <- r.URL.Path
		forms <- r.PostForm
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "42", server.URL)
	require.NoError(t, n.Send(context.Background(), "Results", "body"))

	require.Equal(t, "/botTOKEN/sendMessage", <-paths)
	form := <-forms
	require.Equal(t, "42", form.Get("chat_id"))
	require.Equal(t, "Results\n\nbody", form.Get("text"))
	require.Equal(t, "Markdown", form.Get("parse_mode"))
}

func TestSendErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewNotifier("TOKEN", "42", server.URL).Send(context.Background(), "t", "b")
	require.ErrorContains(t, err, "401")

	err = NewNotifier("", "42", server.URL).Send(context.Background(), "t", "b")
	require.ErrorIs(t, err, ErrMisconfigured)
}

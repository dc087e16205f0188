package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubNotifier string

func (s stubNotifier) Name() string { return string(s) }

func (stubNotifier) Send(context.Context, string, string) error { return nil }

func TestRegistryResolveAll(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubNotifier("serverchan"))
	reg.Register(stubNotifier("telegram"))
	reg.Register(nil)

	require.Equal(t, []string{"serverchan", "telegram"}, reg.Names())

	got, err := reg.ResolveAll([]string{"telegram", "pager", "telegram", "serverchan"})
	require.ErrorIs(t, err, ErrUnknownChannel)
	require.ErrorContains(t, err, "pager")
	require.Len(t, got, 2)
	require.Equal(t, "telegram", got[0].Name())
	require.Equal(t, "serverchan", got[1].Name())

	_, err = reg.Resolve("email")
	require.ErrorIs(t, err, ErrUnknownChannel)

	all, err := reg.ResolveAll(nil)
	require.NoError(t, err)
	require.Empty(t, all)
}

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	token, err := Static("tok-1").Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
}

func TestNone(t *testing.T) {
	token, err := None().Token(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
}

package paramstore_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

func TestErrorIsMatchesKindAndCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("ParameterNotFound: nope")
	err := fmt.Errorf("rotate: %w", &paramstore.Error{
		Op:   "get",
		Name: "/app/secret",
		Kind: paramstore.ErrNotFound,
		Err:  cause,
	})

	assert.ErrorIs(t, err, paramstore.ErrNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, paramstore.ErrAccessDenied)

	var perr *paramstore.Error
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "get", perr.Op)
	assert.Contains(t, err.Error(), "/app/secret")
}

func TestErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := &paramstore.Error{Op: "put", Name: "p", Kind: paramstore.ErrTransient}
	assert.Equal(t, "put p: transient service error", err.Error())
	assert.ErrorIs(t, err, paramstore.ErrTransient)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{&paramstore.Error{Kind: paramstore.ErrNotFound}, "missing_target"},
		{&paramstore.Error{Kind: paramstore.ErrAccessDenied}, "permission_denied"},
		{&paramstore.Error{Kind: paramstore.ErrTransient}, "transient"},
		{&paramstore.Error{Kind: paramstore.ErrExists}, "exists"},
		{&paramstore.Error{Kind: paramstore.ErrInvalid}, "invalid"},
		{errors.New("other"), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, paramstore.KindOf(tt.err))
	}
}

package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindInternal},
		{errors.New("boom"), KindInternal},
		{ErrGuestNotFound, KindNotFound},
		{fmt.Errorf("resolve: %w", ErrInvitationNotFound), KindNotFound},
		{ErrSlugTaken, KindAlreadyExists},
		{Validation("name is required"), KindValidation},
		{ErrInvalidRSVPTransition, KindValidation},
		{ErrEmailNotVerified, KindUnauthorized},
		{Backend(context.DeadlineExceeded), KindBackendUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}

func TestBackend(t *testing.T) {
	assert.Nil(t, Backend(nil))

	err := Backend(context.Canceled)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	// 不重複包裝
	assert.Equal(t, err, Backend(err))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "validation_failed", KindValidation.String())
	assert.Equal(t, "internal", KindInternal.String())
}

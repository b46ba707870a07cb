package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrGuestNotFound      = errors.New("guest not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvitationNotFound = errors.New("invitation not found")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrSlugTaken         = errors.New("slug already taken")

	ErrValidation            = errors.New("validation failed")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidRSVPTransition = errors.New("invalid rsvp transition")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")

	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrInternalServerError = errors.New("internal server error")
)

// Kind groups sentinel errors by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindValidation
	KindUnauthorized
	KindBackendUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidation:
		return "validation_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindBackendUnavailable:
		return "backend_unavailable"
	default:
		return "internal"
	}
}

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindNotFound, []error{ErrEventNotFound, ErrGuestNotFound, ErrUserNotFound, ErrInvitationNotFound}},
	{KindAlreadyExists, []error{ErrUserAlreadyExists, ErrSlugTaken}},
	{KindValidation, []error{ErrValidation, ErrInvalidInput, ErrInvalidRSVPTransition}},
	{KindUnauthorized, []error{ErrUnauthorized, ErrInvalidCredentials, ErrEmailNotVerified}},
	{KindBackendUnavailable, []error{ErrBackendUnavailable}},
}

// KindOf classifies err by the first sentinel it wraps.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindInternal
}

// Backend marks err as a store or transport failure. The cause stays reachable
// through errors.Is / errors.As.
func Backend(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}

// Validation wraps ErrValidation with a field-specific message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

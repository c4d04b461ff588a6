package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/token"
)

// Verifier derives an Identity from a credential.
type Verifier interface {
	Identify(ctx context.Context, credential string) (model.Identity, error)
}

// Verification modes accepted by NewVerifier.
const (
	VerifyNone       = "none"
	VerifyHMAC       = "hmac"
	VerifyIntrospect = "introspect"
)

// Unverified reads the payload without checking signature or expiry. The
// backend remains the only authority; every authenticated call is still
// checked server-side.
type Unverified struct{}

func (Unverified) Identify(_ context.Context, credential string) (model.Identity, error) {
	return token.DecodeUnverified(credential)
}

// HMAC checks the HS256 signature and expiry with a shared secret.
type HMAC struct {
	Secret []byte
}

func (h HMAC) Identify(_ context.Context, credential string) (model.Identity, error) {
	return token.Verify(h.Secret, credential)
}

// IdentityFetcher is implemented by api.Client.
type IdentityFetcher interface {
	Me(ctx context.Context, credential string) (model.Identity, error)
}

// Introspect asks the backend who owns the credential.
type Introspect struct {
	Backend IdentityFetcher
}

func (i Introspect) Identify(ctx context.Context, credential string) (model.Identity, error) {
	id, err := i.Backend.Me(ctx, credential)
	if err != nil {
		return model.Identity{}, err
	}
	if !id.Role.Valid() || id.ID <= 0 {
		return model.Identity{}, fmt.Errorf("%w: backend returned incomplete identity", token.ErrMalformed)
	}
	return id, nil
}

// NewVerifier picks a verifier by mode name.
func NewVerifier(mode, secret string, backend IdentityFetcher, log *zap.SugaredLogger) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", VerifyNone:
		if log != nil {
			log.Warnw("credential signature and expiry are not checked locally", "auth.verify", VerifyNone)
		}
		return Unverified{}, nil
	case VerifyHMAC:
		if secret == "" {
			return nil, fmt.Errorf("auth.verify=%s requires auth.secret", VerifyHMAC)
		}
		return HMAC{Secret: []byte(secret)}, nil
	case VerifyIntrospect:
		if backend == nil {
			return nil, fmt.Errorf("auth.verify=%s requires a backend client", VerifyIntrospect)
		}
		return Introspect{Backend: backend}, nil
	default:
		return nil, fmt.Errorf("unknown auth.verify mode %q", mode)
	}
}

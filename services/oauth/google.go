package oauthsvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"

	"github.com/madrasah/darsplan/core/user"
)

const googleIssuer = "https://accounts.google.com"

var ErrInvalidIDToken = errors.New("invalid ID token")

type (
	// GoogleVerifier verifies a Google ID token and resolves the identity
	// it asserts.
	GoogleVerifier interface {
		VerifyIDToken(ctx context.Context, token string) (user.Identity, error)
	}

	GoogleService struct {
		clientID string
		validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error) // mockable
	}
)

var _ GoogleVerifier = (*GoogleService)(nil)

func NewGoogleService(clientID string) *GoogleService {
	return &GoogleService{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// VerifyIDToken validates token against our client ID and maps its claims to
// an Identity. The Google subject is folded into a stable uuid so profile
// rows key the same way for both auth methods.
func (svc *GoogleService) VerifyIDToken(ctx context.Context, token string) (user.Identity, error) {
	payload, err := svc.validate(ctx, token, svc.clientID)
	if err != nil {
		return user.Identity{}, errors.Wrap(ErrInvalidIDToken, err.Error())
	}
	if payload.Issuer != googleIssuer && payload.Issuer != "accounts.google.com" {
		return user.Identity{}, ErrInvalidIDToken
	}

	ident := user.Identity{
		ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(googleIssuer+"/"+payload.Subject)).String(),
	}
	if name, ok := payload.Claims["name"].(string); ok {
		ident.Name = name
	}
	if email, ok := payload.Claims["email"].(string); ok {
		ident.Email = email
	}
	return ident, nil
}

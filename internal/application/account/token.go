package account

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/jwt"
)

// Revoker blacklists token ids.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// TokenUseCase issues and revokes API access tokens for libraryctl.
type TokenUseCase struct {
	users   user.Service
	tokens  *jwt.Manager
	revoker Revoker
	now     func() time.Time
}

func NewTokenUseCase(userService user.Service, tokens *jwt.Manager, revoker Revoker) *TokenUseCase {
	return &TokenUseCase{
		users:   userService,
		tokens:  tokens,
		revoker: revoker,
		now:     time.Now,
	}
}

// Issue checks the credentials and signs a token carrying the staff flag.
func (uc *TokenUseCase) Issue(ctx context.Context, username, password string) (*jwt.Token, error) {
	u, err := uc.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return uc.tokens.GenerateToken(u.ID, u.Username, u.IsStaff)
}

// Revoke blacklists a token until it would have expired. Expired tokens
// are rejected by ParseToken already.
func (uc *TokenUseCase) Revoke(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	claims, err := uc.tokens.ParseToken(accessToken)
	if err != nil {
		return nil, err
	}

	ttl := claims.ExpiresAt.Time.Sub(uc.now())
	if err := uc.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return nil, err
	}
	return claims, nil
}

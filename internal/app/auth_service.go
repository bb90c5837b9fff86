package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"footy-quiz-service/internal/domain"
	"footy-quiz-service/internal/telegram"
)

// CredentialMinter issues the platform session token for a verified identity.
type CredentialMinter interface {
	Mint(identity domain.Identity) (string, error)
}

// AuthService bridges a Telegram launch payload to a platform credential
// and bootstraps the user's profile document.
type AuthService struct {
	botToken string
	minter   CredentialMinter
	profiles ProfileRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(botToken string, minter CredentialMinter, profiles ProfileRepository, log *zap.Logger) *AuthService {
	return &AuthService{
		botToken: botToken,
		minter:   minter,
		profiles: profiles,
		log:      log,
		now:      time.Now,
	}
}

// Login verifies rawInitData, mints a credential bound to the Telegram user
// id, and upserts the profile with merge semantics: score is initialized only
// on first login, lastLogin is always refreshed, everything else is kept.
func (s *AuthService) Login(ctx context.Context, rawInitData string) (string, domain.Identity, error) {
	identity, err := telegram.Verify(rawInitData, s.botToken)
	if err != nil {
		return "", domain.Identity{}, err
	}

	credential, err := s.minter.Mint(identity)
	if err != nil {
		return "", domain.Identity{}, err
	}

	if _, err := s.profiles.Update(ctx, identity.TelegramID, func(p *domain.Profile) error {
		p.TelegramID = identity.TelegramID
		p.Name = identity.DisplayName()
		p.LastLogin = s.now()
		return nil
	}); err != nil {
		return "", domain.Identity{}, err
	}

	s.log.Info("telegram login",
		zap.String("telegram_id", identity.TelegramID),
		zap.String("username", identity.Username))
	return credential, identity, nil
}

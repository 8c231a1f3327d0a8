package auth

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Service struct {
	accounts AccountsRepo
	tokens   *TokenService
	hashCost int
	// compared against when the username is unknown, so both failure paths cost one bcrypt verify
	dummyHash string
	now       func() time.Time
}

func NewService(accounts AccountsRepo, tokens *TokenService, hashCost int) (*Service, error) {
	dummyHash, err := pkg.HashPassword("gymtracker-no-such-account", hashCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		accounts:  accounts,
		tokens:    tokens,
		hashCost:  hashCost,
		dummyHash: dummyHash,
		now:       time.Now,
	}, nil
}

func (s *Service) Register(ctx context.Context, username, password string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if username == "" || password == "" {
		return nil, apperr.New(apperr.InvalidInput, "username and password must not be empty")
	}
	if len(password) > pkg.MaxPasswordBytes {
		return nil, apperr.New(apperr.InvalidInput, "password must not be longer than %d bytes", pkg.MaxPasswordBytes)
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, apperr.New(apperr.DuplicateAccount, "username [%s] is taken", username)
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, apperr.Wrap(apperr.StorageUnavailable, err, "get account")
	}

	hash, err := pkg.HashPassword(password, s.hashCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "hash password")
	}

	account, err := s.accounts.Add(ctx, username, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			return nil, apperr.New(apperr.DuplicateAccount, "username [%s] is taken", username)
		}
		return nil, apperr.Wrap(apperr.StorageUnavailable, err, "add account")
	}

	span.SetAttributes(attribute.Int64("account.id", account.ID))
	log.Debugf("auth: registered account [%s] with id %d", username, account.ID)
	return account, nil
}

// Authenticate checks the credentials and issues a bearer token for the account.
// Unknown usernames and wrong passwords are both InvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (_ *Token, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.authenticate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, apperr.Wrap(apperr.StorageUnavailable, err, "get account")
		}
		pkg.CheckPasswordHash(password, s.dummyHash)
		return nil, apperr.New(apperr.InvalidCredentials, "invalid username or password")
	}

	if !pkg.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.New(apperr.InvalidCredentials, "invalid username or password")
	}

	return s.tokens.Issue(account.Username)
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type PsqlAccounts struct {
	db *pgxpool.Pool
}

func NewPsqlAccounts(db *pgxpool.Pool) *PsqlAccounts {
	return &PsqlAccounts{
		db: db,
	}
}

func (r *PsqlAccounts) Add(ctx context.Context, username, passwordHash string, createdAt time.Time) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account := &Account{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO account (username, password, created_at) VALUES ($1, $2, $3) RETURNING id`,
		username, passwordHash, createdAt,
	).Scan(&account.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("account.id", account.ID))
	return account, nil
}

func (r *PsqlAccounts) GetByUsername(ctx context.Context, username string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.getbyusername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account := &Account{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, password, created_at FROM account WHERE username = $1`,
		username,
	).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

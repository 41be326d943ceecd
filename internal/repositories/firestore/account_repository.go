package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/maplemarket/api/internal/domain"
	pfirestore "github.com/maplemarket/api/internal/platform/firestore"
)

const accountsCollection = "accounts"

type accountDocument struct {
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func (d accountDocument) toDomain(id string) domain.Account {
	return domain.Account{
		ID:          id,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		CreatedAt:   d.CreatedAt,
	}
}

// AccountRepository resolves shopper accounts within Firestore.
type AccountRepository struct {
	base *pfirestore.BaseRepository[accountDocument]
}

// NewAccountRepository constructs a Firestore-backed account repository.
func NewAccountRepository(provider *pfirestore.Provider) (*AccountRepository, error) {
	if provider == nil {
		return nil, errors.New("account repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[accountDocument](provider, accountsCollection, nil, nil)
	return &AccountRepository{base: base}, nil
}

// FindByEmail resolves the account registered under the given login email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if r == nil || r.base == nil {
		return domain.Account{}, errors.New("account repository not initialised")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Account{}, errors.New("account repository: email is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("email", "==", email).Limit(1)
	})
	if err != nil {
		return domain.Account{}, err
	}
	if len(docs) == 0 {
		return domain.Account{}, pfirestore.WrapError("accounts.get", status.Errorf(codes.NotFound, "account %s not found", email))
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

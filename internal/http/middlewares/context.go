package middlewares

import (
	"context"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
)

type ctxKey string

const (
	ctxAccountKey   ctxKey = "account"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithAccount inyecta la cuenta autenticada en el contexto.
func WithAccount(ctx context.Context, a *account.Account) context.Context {
	return context.WithValue(ctx, ctxAccountKey, a)
}

// CurrentAccount devuelve la cuenta autenticada o nil.
func CurrentAccount(ctx context.Context) *account.Account {
	a, _ := ctx.Value(ctxAccountKey).(*account.Account)
	return a
}

// CurrentAccountID es "" para requests anónimos.
func CurrentAccountID(ctx context.Context) string {
	if a := CurrentAccount(ctx); a != nil {
		return a.ID
	}
	return ""
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/infra/cache"
	"github.com/zykor/contahub-sync-go/internal/port"
)

var tracer = otel.Tracer("service")

// credentialService is the credenciais lookup key for the upstream API.
const credentialService = "contahub"

// Authenticator exchanges the stored ContaHub credentials for a bearer
// token. The token is returned as a value and threaded through the
// collector calls, never held as shared state, so concurrent runs for
// different tenants stay independent.
type Authenticator struct {
	creds  port.CredentialsSource
	api    port.ReportAPI
	cache  *cache.InMemory[domain.Credentials]
	logger *zap.Logger
}

// NewAuthenticator creates an Authenticator. The cache keeps the
// credentials row warm across the days of a retroactive run.
func NewAuthenticator(creds port.CredentialsSource, api port.ReportAPI, credCache *cache.InMemory[domain.Credentials], logger *zap.Logger) *Authenticator {
	return &Authenticator{
		creds:  creds,
		api:    api,
		cache:  credCache,
		logger: logger,
	}
}

// Token performs a single login against the upstream API. Exactly one
// active credential row must exist; zero or multiple rows is a
// configuration error. Neither the lookup nor the login is retried.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Authenticator.Token")
	defer span.End()

	creds, ok := a.cache.Get(credentialService)
	if !ok {
		rows, err := a.creds.ActiveCredentials(ctx, credentialService)
		if err != nil {
			return "", err
		}
		switch len(rows) {
		case 0:
			return "", &domain.ErrConfiguration{Message: "no active contahub credentials found"}
		case 1:
			creds = rows[0]
		default:
			return "", &domain.ErrConfiguration{
				Message: fmt.Sprintf("expected one active contahub credential, found %d", len(rows)),
			}
		}
		a.cache.Set(credentialService, creds)
	}

	token, err := a.api.Login(ctx, creds)
	if err != nil {
		a.logger.Error("authentication failed", zap.Error(err))
		return "", err
	}

	a.logger.Info("contahub login OK", zap.String("username", creds.Username))
	return token, nil
}

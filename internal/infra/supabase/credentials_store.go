package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// ActiveCredentials returns the active credential rows for a service
// (implements port.CredentialsSource). The caller decides whether more or
// fewer than one row is acceptable.
func (c *Client) ActiveCredentials(ctx context.Context, service string) ([]domain.Credentials, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ActiveCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("service", service))

	var creds []domain.Credentials

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("credenciais?select=username,password&servico=eq.%s&ativo=eq.true", service)
		body, err := c.doGet(ctx, path)
		if err != nil {
			return err
		}
		if body == nil {
			creds = nil
			return nil
		}
		if err := json.Unmarshal(body, &creds); err != nil {
			return fmt.Errorf("failed to decode credentials: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credenciais", Err: err}
	}

	return creds, nil
}

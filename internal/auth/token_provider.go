package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	awsclient "github.com/vatgate/vatgate-api/internal/client/aws"
	"github.com/vatgate/vatgate-api/internal/logger"
	"go.uber.org/zap"
)

// AccessTokenProvider resolves the admin API access token for a storefront
// domain. Tokens are scoped per storefront, so the domain is the lookup key.
type AccessTokenProvider interface {
	AccessToken(ctx context.Context, storefrontDomain string) (string, error)
}

// SecretsTokenProvider resolves tokens from AWS Secrets Manager with an
// environment variable fallback, caching resolved tokens per domain.
type SecretsTokenProvider struct {
	secrets *awsclient.SecretsManagerClient

	mu    sync.RWMutex
	cache map[string]string
}

// NewSecretsTokenProvider creates a token provider backed by Secrets Manager.
func NewSecretsTokenProvider(secrets *awsclient.SecretsManagerClient) *SecretsTokenProvider {
	return &SecretsTokenProvider{
		secrets: secrets,
		cache:   make(map[string]string),
	}
}

// AccessToken returns the admin access token for the given storefront domain.
// The token is looked up under SHOP_ADMIN_TOKEN_ARN_<DOMAIN> (Secrets Manager
// ARN) with SHOP_ADMIN_TOKEN_<DOMAIN> as the direct fallback, where <DOMAIN>
// is the domain uppercased with every non-alphanumeric character replaced by
// an underscore.
func (p *SecretsTokenProvider) AccessToken(ctx context.Context, storefrontDomain string) (string, error) {
	if storefrontDomain == "" {
		return "", fmt.Errorf("storefront domain is required")
	}

	p.mu.RLock()
	token, ok := p.cache[storefrontDomain]
	p.mu.RUnlock()
	if ok {
		return token, nil
	}

	suffix := EnvKeySuffix(storefrontDomain)
	token, err := p.secrets.GetSecretString(ctx, "SHOP_ADMIN_TOKEN_ARN_"+suffix, "SHOP_ADMIN_TOKEN_"+suffix)
	if err != nil {
		return "", fmt.Errorf("no admin token configured for storefront %s: %w", storefrontDomain, err)
	}

	logger.Debug("Resolved admin access token", zap.String("storefront_domain", storefrontDomain))

	p.mu.Lock()
	p.cache[storefrontDomain] = token
	p.mu.Unlock()
	return token, nil
}

// StaticTokenProvider serves tokens from a fixed domain->token map. Used in
// tests and local development.
type StaticTokenProvider map[string]string

// AccessToken implements AccessTokenProvider.
func (p StaticTokenProvider) AccessToken(_ context.Context, storefrontDomain string) (string, error) {
	token, ok := p[storefrontDomain]
	if !ok {
		return "", fmt.Errorf("no admin token configured for storefront %s", storefrontDomain)
	}
	return token, nil
}

// EnvKeySuffix converts a storefront domain into the uppercase underscore
// form used in environment variable names.
func EnvKeySuffix(domain string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(domain) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

package cognito

import (
	"context"
	"fmt"
	"sync"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"go.uber.org/zap"
)

// Config holds the user pool settings verifiers are built from
type Config struct {
	Region     string
	UserPoolID string
	ClientID   string

	// JWKSURL overrides the pool's well-known JWKS endpoint when set
	JWKSURL string

	// IssuerURL overrides the pool's issuer when set
	IssuerURL string
}

// Issuer returns the expected iss claim for tokens from this pool
func (c Config) Issuer() string {
	if c.IssuerURL != "" {
		return c.IssuerURL
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// KeysURL returns the JWKS endpoint for this pool
func (c Config) KeysURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return c.Issuer() + "/.well-known/jwks.json"
}

// KeySourceBuilder constructs a KeySource for a JWKS URL.
// ctx bounds the lifetime of any background key refresh.
type KeySourceBuilder func(ctx context.Context, jwksURL string) (KeySource, error)

// NewRemoteKeySource fetches and auto-refreshes the JWKS at jwksURL
func NewRemoteKeySource(ctx context.Context, jwksURL string) (KeySource, error) {
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}
	return kf, nil
}

// VerifierFactory lazily builds one TokenVerifier per token use and memoizes it
// for the lifetime of the factory.
type VerifierFactory struct {
	cfg    Config
	build  KeySourceBuilder
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	verifiers map[TokenUse]*TokenVerifier

	// building serializes construction per use; it is never held with mu
	building map[TokenUse]*sync.Mutex
}

// FactoryOption configures a VerifierFactory
type FactoryOption func(*VerifierFactory)

// WithKeySourceBuilder replaces the JWKS-backed key source
func WithKeySourceBuilder(build KeySourceBuilder) FactoryOption {
	return func(f *VerifierFactory) {
		f.build = build
	}
}

// NewVerifierFactory creates a factory. No network access happens until the
// first verification for a given token use.
func NewVerifierFactory(cfg Config, logger *zap.Logger, opts ...FactoryOption) *VerifierFactory {
	ctx, cancel := context.WithCancel(context.Background())
	f := &VerifierFactory{
		cfg:       cfg,
		build:     NewRemoteKeySource,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		verifiers: make(map[TokenUse]*TokenVerifier),
		building: map[TokenUse]*sync.Mutex{
			TokenUseAccess: {},
			TokenUseID:     {},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Configured reports whether a verifier for the given use can be built at all
func (f *VerifierFactory) Configured(use TokenUse) bool {
	if f.cfg.UserPoolID == "" {
		return false
	}
	if use == TokenUseID && f.cfg.ClientID == "" {
		return false
	}
	return true
}

// Verifier returns the memoized verifier for use, building it on first call.
// Concurrent first calls build exactly one verifier. A failed build is not
// memoized, so the next request retries it.
func (f *VerifierFactory) Verifier(use TokenUse) (*TokenVerifier, error) {
	if use != TokenUseAccess && use != TokenUseID {
		return nil, fmt.Errorf("%w: unknown token use %q", ErrVerifierUnavailable, use)
	}
	if !f.Configured(use) {
		return nil, fmt.Errorf("%w: %s verification not configured", ErrVerifierUnavailable, use)
	}

	if v := f.cached(use); v != nil {
		return v, nil
	}

	// Build outside mu; the guard admits one builder per use
	guard := f.building[use]
	guard.Lock()
	defer guard.Unlock()

	if v := f.cached(use); v != nil {
		return v, nil
	}

	keys, err := f.build(f.ctx, f.cfg.KeysURL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}

	v := newTokenVerifier(use, f.cfg.Issuer(), f.cfg.ClientID, keys)
	f.mu.Lock()
	f.verifiers[use] = v
	f.mu.Unlock()

	f.logger.Info("token verifier initialized",
		zap.String("token_use", string(use)),
		zap.String("jwks_url", f.cfg.KeysURL()))

	return v, nil
}

func (f *VerifierFactory) cached(use TokenUse) *TokenVerifier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifiers[use]
}

// Verify verifies tokenString as a token of the given use.
// It never returns an error; failures are carried in the outcome.
func (f *VerifierFactory) Verify(ctx context.Context, use TokenUse, tokenString string) VerificationOutcome {
	v, err := f.Verifier(use)
	if err != nil {
		return Unavailable(err)
	}

	claims, err := v.Verify(ctx, tokenString)
	if err != nil {
		return Rejected(err)
	}
	return Verified(claims)
}

// Close stops background key refresh for all built verifiers
func (f *VerifierFactory) Close() {
	f.cancel()
}

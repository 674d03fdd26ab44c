package acme

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"

	"github.com/dmitrymomot/acmegate/core/kv"
	"github.com/dmitrymomot/acmegate/pkg/logger"
)

// ACMEClient is the narrow slice of the lego client the engine uses.
// The indirection keeps issuance swappable for staging directories and
// testable without network access.
type ACMEClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	SetHTTP01Provider(provider challenge.Provider) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

// ClientFactory builds an ACMEClient from a lego configuration.
type ClientFactory func(*lego.Config) (ACMEClient, error)

func defaultClientFactory(cfg *lego.Config) (ACMEClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &legoAdapter{client: client}, nil
}

type legoAdapter struct {
	client *lego.Client
}

func (a *legoAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return a.client.Registration.Register(options)
}

func (a *legoAdapter) SetHTTP01Provider(provider challenge.Provider) error {
	return a.client.Challenge.SetHTTP01Provider(provider)
}

func (a *legoAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return a.client.Certificate.Obtain(request)
}

// Client issues certificates for a single ACME account.
type Client struct {
	cfg     Config
	account *account
	acme    ACMEClient
	log     *slog.Logger

	factory       ClientFactory
	http01Host    string
	http01Port    string
	skipChallenge bool
}

// New creates a Client for the configured account. The account key must
// already exist in storage (see CreateAccount); a configuration referencing
// an unknown account fails with "account <email> not found in storage".
func New(ctx context.Context, cfg Config, store kv.Store, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	acct, err := loadAccount(ctx, store, cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		account:    acct,
		log:        slog.Default(),
		factory:    defaultClientFactory,
		http01Port: "80",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("acme"), logger.Account(cfg.AccountName()))

	legoCfg := lego.NewConfig(acct)
	legoCfg.CADirURL = cfg.APIURI
	legoCfg.Certificate.KeyType = certcrypto.EC256

	c.acme, err = c.factory(legoCfg)
	if err != nil {
		return nil, fmt.Errorf("create acme client: %w", err)
	}

	if !c.skipChallenge {
		provider := http01.NewProviderServer(c.http01Host, c.http01Port)
		if err := c.acme.SetHTTP01Provider(provider); err != nil {
			return nil, fmt.Errorf("configure http-01 provider: %w", err)
		}
	}

	return c, nil
}

// Issue obtains a fresh key and certificate pair for host. This is a
// blocking call that performs the full ACME order flow.
func (c *Client) Issue(ctx context.Context, host string) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c.log.Info("obtaining certificate", logger.Host(host))

	res, err := c.acme.Obtain(certificate.ObtainRequest{
		Domains: []string{host},
		Bundle:  true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("obtain certificate for %s: %w", host, err)
	}
	if len(res.PrivateKey) == 0 || len(res.Certificate) == 0 {
		return nil, nil, fmt.Errorf("empty certificate payload for %s", host)
	}

	c.log.Info("certificate obtained", logger.Host(host))
	return res.PrivateKey, res.Certificate, nil
}

// AccountName returns the derived identifier of the configured account.
func (c *Client) AccountName() string {
	return c.cfg.AccountName()
}

// CreateAccount registers a new ACME account for cfg and persists its key
// material, making subsequent New calls for the same configuration succeed.
// Registering an already-registered key is idempotent on the ACME side.
func CreateAccount(ctx context.Context, cfg Config, store kv.Store, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key, keyPEM, err := newAccountKey()
	if err != nil {
		return err
	}

	acct := &account{email: cfg.AccountEmail, key: key}
	legoCfg := lego.NewConfig(acct)
	legoCfg.CADirURL = cfg.APIURI
	legoCfg.Certificate.KeyType = certcrypto.EC256

	c := &Client{factory: defaultClientFactory}
	for _, opt := range opts {
		opt(c)
	}

	ac, err := c.factory(legoCfg)
	if err != nil {
		return fmt.Errorf("create acme client: %w", err)
	}

	reg, err := ac.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return fmt.Errorf("register account %s: %w", cfg.AccountEmail, err)
	}

	return storeAccount(ctx, store, cfg.AccountName(), accountRecord{
		Key: keyPEM,
		KID: reg.URI,
	})
}

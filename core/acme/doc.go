// Package acme wraps the lego ACME client for the gateway renewal engine.
//
// A Client is bound to one account, identified by a stable name derived
// from the account email and the directory endpoint. Account key material
// lives in storage under AccountPrefix and is cached process-wide; creating
// a Client for an account that was never registered fails immediately with
// a descriptive error:
//
//	client, err := acme.New(ctx, cfg, store)
//	// err: "account notme@example.com not found in storage"
//
// CreateAccount bootstraps a new account: it generates an EC P-256 key,
// registers it with the directory (terms of service agreed) and persists
// the key plus the assigned account URI.
//
// Issuance is a single blocking call:
//
//	keyPEM, certPEM, err := client.Issue(ctx, "example.com")
//
// The lego client is reached through the ACMEClient interface so tests can
// inject fakes via WithClientFactory and never touch the network.
package acme

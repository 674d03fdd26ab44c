package certstore

import "github.com/google/uuid"

// ManagedTag marks certificates and SNI bindings owned by the renewal
// engine, distinguishing them from user-managed records during enumeration.
const ManagedTag = "managed-by-acme"

// Certificate is a stored certificate record. A record is unreferenced once
// no SNI binding points at it, and is deleted right after its binding is
// repointed elsewhere.
type Certificate struct {
	ID      uuid.UUID
	CertPEM []byte
	KeyPEM  []byte
	Tags    []string
}

// Managed reports whether the record carries the ManagedTag.
func (c *Certificate) Managed() bool {
	for _, tag := range c.Tags {
		if tag == ManagedTag {
			return true
		}
	}
	return false
}

// SNI binds a hostname to a certificate record. Hostnames are unique across
// all bindings.
type SNI struct {
	ID            uuid.UUID
	Name          string
	CertificateID uuid.UUID
	Tags          []string
}

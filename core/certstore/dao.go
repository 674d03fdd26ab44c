package certstore

import (
	"context"

	"github.com/google/uuid"
)

// DAO is the relational persistence contract for certificate and SNI
// entities. Absent records are reported as kv.ErrNotFound so the renewal
// core keeps a single error taxonomy across backends.
type DAO interface {
	CreateCertificate(ctx context.Context, cert *Certificate) error
	GetCertificate(ctx context.Context, id uuid.UUID) (*Certificate, error)
	DeleteCertificate(ctx context.Context, id uuid.UUID) error

	GetSNI(ctx context.Context, name string) (*SNI, error)
	CreateSNI(ctx context.Context, sni *SNI) error
	// UpdateSNICertificate repoints an existing binding to another
	// certificate record.
	UpdateSNICertificate(ctx context.Context, sniID, certID uuid.UUID) error

	// ListManagedHosts returns the hostnames of all SNI bindings whose
	// certificate carries the ManagedTag.
	ListManagedHosts(ctx context.Context) ([]string, error)
}

package certstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/acmegate/core/kv"
	"github.com/dmitrymomot/acmegate/pkg/logger"
)

// DAOStore implements Store on top of a relational DAO.
type DAOStore struct {
	dao DAO
	log *slog.Logger
}

// NewDAOStore creates a Store backed by the given DAO.
func NewDAOStore(dao DAO, log *slog.Logger) *DAOStore {
	if log == nil {
		log = slog.Default()
	}
	return &DAOStore{
		dao: dao,
		log: log.With(logger.Component("certstore")),
	}
}

func (s *DAOStore) Fetch(ctx context.Context, host string) ([]byte, []byte, error) {
	sni, err := s.dao.GetSNI(ctx, host)
	if err != nil {
		return nil, nil, err
	}

	cert, err := s.dao.GetCertificate(ctx, sni.CertificateID)
	if errors.Is(err, kv.ErrNotFound) {
		// Dangling binding: the record was removed out-of-band. Reported as
		// absence so the bookkeeper can clean up.
		return nil, nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return cert.KeyPEM, cert.CertPEM, nil
}

// Save creates the new certificate record first, then repoints the host's
// SNI binding, and only after the repoint committed deletes the previously
// bound record. A failure before the repoint leaves the old certificate
// fully intact; a failure after it leaves at worst an unreferenced record,
// which the next cycle tolerates. When the DAO supports transactions the
// create and repoint commit together.
func (s *DAOStore) Save(ctx context.Context, host string, keyPEM, certPEM []byte) error {
	newCert := &Certificate{
		ID:      uuid.New(),
		CertPEM: certPEM,
		KeyPEM:  keyPEM,
		Tags:    []string{ManagedTag},
	}

	var oldID uuid.UUID
	bind := func(ctx context.Context) error {
		if err := s.dao.CreateCertificate(ctx, newCert); err != nil {
			return fmt.Errorf("create certificate for %s: %w", host, err)
		}

		sni, err := s.dao.GetSNI(ctx, host)
		if errors.Is(err, kv.ErrNotFound) {
			if err := s.dao.CreateSNI(ctx, &SNI{
				ID:            uuid.New(),
				Name:          host,
				CertificateID: newCert.ID,
				Tags:          []string{ManagedTag},
			}); err != nil {
				return fmt.Errorf("create sni for %s: %w", host, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("lookup sni for %s: %w", host, err)
		}

		oldID = sni.CertificateID
		if err := s.dao.UpdateSNICertificate(ctx, sni.ID, newCert.ID); err != nil {
			return fmt.Errorf("repoint sni for %s: %w", host, err)
		}
		return nil
	}

	var err error
	if tx, ok := s.dao.(Transactor); ok {
		err = tx.InTx(ctx, bind)
	} else {
		err = bind(ctx)
	}
	if err != nil {
		return err
	}

	// Delete strictly after the repoint committed, never inside the same
	// transaction: reversing the order could drop the old certificate while
	// the new binding failed to commit.
	if oldID == uuid.Nil || oldID == newCert.ID {
		return nil
	}
	if err := s.dao.DeleteCertificate(ctx, oldID); err != nil && !errors.Is(err, kv.ErrNotFound) {
		// The binding already points at the new record; the leftover is an
		// unreferenced orphan, not a correctness violation.
		s.log.Warn("failed to delete replaced certificate, leaving orphan",
			logger.Host(host), logger.Error(err))
	}
	return nil
}

func (s *DAOStore) Hosts(ctx context.Context) ([]string, error) {
	return s.dao.ListManagedHosts(ctx)
}

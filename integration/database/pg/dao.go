package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every DAO
// method transparently joins a transaction carried in the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DAO implements certstore.DAO on PostgreSQL. Absent records map to
// kv.ErrNotFound, keeping the renewal core's error taxonomy uniform across
// backends.
type DAO struct {
	pool *pgxpool.Pool
}

// NewDAO creates a DAO over the given pool.
func NewDAO(pool *pgxpool.Pool) *DAO {
	return &DAO{pool: pool}
}

func (d *DAO) q(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return d.pool
}

// InTx runs fn inside a transaction, committing when fn returns nil. The
// transaction travels in the context, so fn can call DAO methods without
// extra plumbing. If ctx already carries a transaction fn joins it.
func (d *DAO) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", kv.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit tx: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (d *DAO) CreateCertificate(ctx context.Context, cert *certstore.Certificate) error {
	_, err := d.q(ctx).Exec(ctx,
		`INSERT INTO certificates (id, cert, key, tags) VALUES ($1, $2, $3, $4)`,
		cert.ID, cert.CertPEM, cert.KeyPEM, cert.Tags)
	if err != nil {
		return fmt.Errorf("%w: insert certificate %s: %v", kv.ErrUnavailable, cert.ID, err)
	}
	return nil
}

func (d *DAO) GetCertificate(ctx context.Context, id uuid.UUID) (*certstore.Certificate, error) {
	cert := &certstore.Certificate{ID: id}
	err := d.q(ctx).QueryRow(ctx,
		`SELECT cert, key, tags FROM certificates WHERE id = $1`,
		id).Scan(&cert.CertPEM, &cert.KeyPEM, &cert.Tags)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, kv.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: select certificate %s: %v", kv.ErrUnavailable, id, err)
	}
	return cert, nil
}

func (d *DAO) DeleteCertificate(ctx context.Context, id uuid.UUID) error {
	tag, err := d.q(ctx).Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete certificate %s: %v", kv.ErrUnavailable, id, err)
	}
	if tag.RowsAffected() == 0 {
		return kv.ErrNotFound
	}
	return nil
}

func (d *DAO) GetSNI(ctx context.Context, name string) (*certstore.SNI, error) {
	sni := &certstore.SNI{Name: name}
	err := d.q(ctx).QueryRow(ctx,
		`SELECT id, certificate_id, tags FROM snis WHERE name = $1`,
		name).Scan(&sni.ID, &sni.CertificateID, &sni.Tags)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, kv.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: select sni %s: %v", kv.ErrUnavailable, name, err)
	}
	return sni, nil
}

func (d *DAO) CreateSNI(ctx context.Context, sni *certstore.SNI) error {
	_, err := d.q(ctx).Exec(ctx,
		`INSERT INTO snis (id, name, certificate_id, tags) VALUES ($1, $2, $3, $4)`,
		sni.ID, sni.Name, sni.CertificateID, sni.Tags)
	if err != nil {
		return fmt.Errorf("%w: insert sni %s: %v", kv.ErrUnavailable, sni.Name, err)
	}
	return nil
}

func (d *DAO) UpdateSNICertificate(ctx context.Context, sniID, certID uuid.UUID) error {
	tag, err := d.q(ctx).Exec(ctx,
		`UPDATE snis SET certificate_id = $2 WHERE id = $1`, sniID, certID)
	if err != nil {
		return fmt.Errorf("%w: repoint sni %s: %v", kv.ErrUnavailable, sniID, err)
	}
	if tag.RowsAffected() == 0 {
		return kv.ErrNotFound
	}
	return nil
}

func (d *DAO) ListManagedHosts(ctx context.Context) ([]string, error) {
	rows, err := d.q(ctx).Query(ctx,
		`SELECT s.name
		   FROM snis s
		   JOIN certificates c ON c.id = s.certificate_id
		  WHERE $1 = ANY(c.tags)
		  ORDER BY s.name`,
		certstore.ManagedTag)
	if err != nil {
		return nil, fmt.Errorf("%w: list managed hosts: %v", kv.ErrUnavailable, err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan managed host: %v", kv.ErrUnavailable, err)
		}
		hosts = append(hosts, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list managed hosts: %v", kv.ErrUnavailable, err)
	}
	return hosts, nil
}

package certstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
)

// fakeDAO is an in-memory DAO with optional failure injection.
type fakeDAO struct {
	mu    sync.Mutex
	certs map[uuid.UUID]*certstore.Certificate
	snis  map[string]*certstore.SNI

	failRepoint bool
	failDelete  bool
}

func newFakeDAO() *fakeDAO {
	return &fakeDAO{
		certs: make(map[uuid.UUID]*certstore.Certificate),
		snis:  make(map[string]*certstore.SNI),
	}
}

func (d *fakeDAO) CreateCertificate(_ context.Context, cert *certstore.Certificate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *cert
	d.certs[cert.ID] = &clone
	return nil
}

func (d *fakeDAO) GetCertificate(_ context.Context, id uuid.UUID) (*certstore.Certificate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cert, ok := d.certs[id]
	if !ok {
		return nil, kv.ErrNotFound
	}
	clone := *cert
	return &clone, nil
}

func (d *fakeDAO) DeleteCertificate(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failDelete {
		return errors.New("injected delete failure")
	}
	delete(d.certs, id)
	return nil
}

func (d *fakeDAO) GetSNI(_ context.Context, name string) (*certstore.SNI, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sni, ok := d.snis[name]
	if !ok {
		return nil, kv.ErrNotFound
	}
	clone := *sni
	return &clone, nil
}

func (d *fakeDAO) CreateSNI(_ context.Context, sni *certstore.SNI) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *sni
	d.snis[sni.Name] = &clone
	return nil
}

func (d *fakeDAO) UpdateSNICertificate(_ context.Context, sniID, certID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failRepoint {
		return errors.New("injected repoint failure")
	}
	for _, sni := range d.snis {
		if sni.ID == sniID {
			sni.CertificateID = certID
			return nil
		}
	}
	return kv.ErrNotFound
}

func (d *fakeDAO) ListManagedHosts(_ context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var hosts []string
	for name, sni := range d.snis {
		if cert, ok := d.certs[sni.CertificateID]; ok && cert.Managed() {
			hosts = append(hosts, name)
		}
	}
	return hosts, nil
}

func (d *fakeDAO) certCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.certs)
}

func TestDAOStoreSaveFreshHost(t *testing.T) {
	ctx := context.Background()
	dao := newFakeDAO()
	store := certstore.NewDAOStore(dao, nil)

	require.NoError(t, store.Save(ctx, "example.com", []byte("key-pem"), []byte("cert-pem")))

	keyPEM, certPEM, err := store.Fetch(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("key-pem"), keyPEM)
	assert.Equal(t, []byte("cert-pem"), certPEM)
	assert.Equal(t, 1, dao.certCount())

	hosts, err := store.Hosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, hosts)
}

func TestDAOStoreSaveReplacesCertificate(t *testing.T) {
	ctx := context.Background()
	dao := newFakeDAO()
	store := certstore.NewDAOStore(dao, nil)

	require.NoError(t, store.Save(ctx, "example.com", []byte("key-1"), []byte("cert-1")))
	firstSNI, err := dao.GetSNI(ctx, "example.com")
	require.NoError(t, err)
	oldCertID := firstSNI.CertificateID

	require.NoError(t, store.Save(ctx, "example.com", []byte("key-2"), []byte("cert-2")))

	// Exactly one live certificate remains, and the binding points at it.
	assert.Equal(t, 1, dao.certCount())

	keyPEM, certPEM, err := store.Fetch(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("key-2"), keyPEM)
	assert.Equal(t, []byte("cert-2"), certPEM)

	// The replaced record is no longer retrievable by its old id.
	_, err = dao.GetCertificate(ctx, oldCertID)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestDAOStoreRepointFailureKeepsOldCertificate(t *testing.T) {
	ctx := context.Background()
	dao := newFakeDAO()
	store := certstore.NewDAOStore(dao, nil)

	require.NoError(t, store.Save(ctx, "example.com", []byte("key-1"), []byte("cert-1")))

	dao.failRepoint = true
	err := store.Save(ctx, "example.com", []byte("key-2"), []byte("cert-2"))
	require.Error(t, err)

	// The old material must still be served; only an orphaned new record
	// may exist.
	keyPEM, certPEM, fetchErr := store.Fetch(ctx, "example.com")
	require.NoError(t, fetchErr)
	assert.Equal(t, []byte("key-1"), keyPEM)
	assert.Equal(t, []byte("cert-1"), certPEM)
}

func TestDAOStoreDeleteFailureLeavesOrphan(t *testing.T) {
	ctx := context.Background()
	dao := newFakeDAO()
	store := certstore.NewDAOStore(dao, nil)

	require.NoError(t, store.Save(ctx, "example.com", []byte("key-1"), []byte("cert-1")))

	dao.failDelete = true
	// Save succeeds even when the old record cannot be removed: the repoint
	// committed and the leftover is a tolerated orphan.
	require.NoError(t, store.Save(ctx, "example.com", []byte("key-2"), []byte("cert-2")))

	keyPEM, certPEM, err := store.Fetch(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("key-2"), keyPEM)
	assert.Equal(t, []byte("cert-2"), certPEM)
	assert.Equal(t, 2, dao.certCount())
}

func TestDAOStoreFetchDanglingBinding(t *testing.T) {
	ctx := context.Background()
	dao := newFakeDAO()
	store := certstore.NewDAOStore(dao, nil)

	require.NoError(t, dao.CreateSNI(ctx, &certstore.SNI{
		ID:            uuid.New(),
		Name:          "dangling.example.com",
		CertificateID: uuid.New(), // no such certificate
	}))

	_, _, err := store.Fetch(ctx, "dangling.example.com")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

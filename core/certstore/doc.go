// Package certstore persists gateway certificates across two divergent
// storage backends behind one behavioral contract.
//
// In relational mode certificates and SNI bindings are separate entities
// managed through the DAO interface; replacing a host's certificate is a
// three step sequence (create new record, repoint the binding, delete the
// replaced record) whose ordering guarantees readers never observe a
// binding that points at a missing certificate. In DB-less mode the two
// entities collapse into a single JSON entry per host under CertKeyPrefix,
// and replacement is one overwrite.
//
// The renewal core consumes the Store interface only and never branches on
// which mode is active.
package certstore

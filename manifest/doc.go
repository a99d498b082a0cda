// Package manifest records which snapshot is the current state of a graph.
//
// # Layout
//
// Each graph owns a prefix in a blob store:
//
//	<graph>/CURRENT                         name of the current manifest
//	<graph>/manifests/MANIFEST-000001.json  one manifest per saved version
//	<graph>/snapshots/<uuid>.snap           snapshot blobs (see persistence)
//
// The manifest file extension is the name of the codec that wrote it, so a
// graph saved as YAML is read back as YAML whatever the current default
// codec is.
//
// # Atomic Protocol
//
// Save writes the new manifest first, then points CURRENT at it. When the
// blob store implements blobstore.ConditionalStore, the manifest is written
// with PutIfNotExists and two writers racing for the same sequence number
// cannot both succeed; the loser gets ErrConflict. Stores backed by
// DynamoDB (s3.CommitStore) version CURRENT itself.
//
// # Thread Safety
//
// All Store methods are safe for concurrent use.
package manifest

// Package services implements the driving ports: project and document
// management, ingestion, retrieval, answer generation and chat.
//
// Services depend only on driven ports. Upload, ingestion and deletion
// share one DocumentLocks table: work on one document id never interleaves,
// and nothing enters a project while it is being deleted.
package services

package services

import "sync"

// DocumentLocks serialises work on the same document id and fences
// project-wide deletion. Ingestion, upload and deletion share one table so
// a delete can never be undone by a concurrent ingest or upload.
//
// Lock order is project before document.
type DocumentLocks struct {
	documents keyedLocks
	projects  keyedLocks
}

// NewDocumentLocks creates an empty lock table.
func NewDocumentLocks() *DocumentLocks {
	return &DocumentLocks{
		documents: keyedLocks{locks: make(map[string]*keyedLock)},
		projects:  keyedLocks{locks: make(map[string]*keyedLock)},
	}
}

// Lock blocks until the document's lock is held and returns its release func.
func (l *DocumentLocks) Lock(documentID string) func() {
	return l.documents.acquire(documentID, false)
}

// LockProject holds the project exclusively. Used while a project is deleted.
func (l *DocumentLocks) LockProject(projectID string) func() {
	return l.projects.acquire(projectID, false)
}

// RLockProject holds the project shared. Uploads, ingestions and single
// document deletes run under it so they cannot interleave with a project
// delete.
func (l *DocumentLocks) RLockProject(projectID string) func() {
	return l.projects.acquire(projectID, true)
}

// Len returns the number of documents and projects currently locked or awaited.
func (l *DocumentLocks) Len() int {
	return l.documents.len() + l.projects.len()
}

type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.RWMutex
	refs int
}

// acquire returns the release func. Entries are dropped once no goroutine
// holds or waits on them.
func (k *keyedLocks) acquire(key string, shared bool) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	if shared {
		entry.mu.RLock()
	} else {
		entry.mu.Lock()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if shared {
				entry.mu.RUnlock()
			} else {
				entry.mu.Unlock()
			}
			k.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

func (k *keyedLocks) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

package services

import (
	"context"
	"sync"

	"github.com/speedrun/backend/internal/models"
)

type memoryMetadataStore struct {
	mu      sync.Mutex
	records map[string]models.Asset

	getErr     error
	deleteErr  error
	replaceErr error
	// beforeReplace runs once, before the first Replace, with the lock released.
	beforeReplace func()

	mutations int
	reads     int
}

func newMemoryMetadataStore(assets ...models.Asset) *memoryMetadataStore {
	s := &memoryMetadataStore{records: map[string]models.Asset{}}
	for _, a := range assets {
		if a.Version == 0 {
			a.Version = 1
		}
		s.records[a.ID+"|"+a.Type] = a
	}
	return s
}

func (s *memoryMetadataStore) GetByID(_ context.Context, id, partitionKey string) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.getErr != nil {
		return nil, s.getErr
	}
	a, ok := s.records[id+"|"+partitionKey]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (s *memoryMetadataStore) QueryByID(ctx context.Context, id string) (*models.Asset, error) {
	return s.GetByID(ctx, id, models.AssetTypeVideo)
}

func (s *memoryMetadataStore) DeleteByID(_ context.Context, id, partitionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	k := id + "|" + partitionKey
	if _, ok := s.records[k]; !ok {
		return ErrNotFound
	}
	delete(s.records, k)
	s.mutations++
	return nil
}

func (s *memoryMetadataStore) Replace(_ context.Context, id, partitionKey string, record *models.Asset, expectedVersion int64) error {
	s.mu.Lock()
	hook := s.beforeReplace
	s.beforeReplace = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	k := id + "|" + partitionKey
	cur, ok := s.records[k]
	if !ok || cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	next := *clone(*record)
	next.Version = expectedVersion + 1
	s.records[k] = next
	s.mutations++
	record.Version = next.Version
	return nil
}

func (s *memoryMetadataStore) exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id+"|"+models.AssetTypeVideo]
	return ok
}

func (s *memoryMetadataStore) get(id string) models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *clone(s.records[id+"|"+models.AssetTypeVideo])
}

func clone(a models.Asset) *models.Asset {
	if a.Comments != nil {
		a.Comments = append([]models.Comment{}, a.Comments...)
	}
	return &a
}

type fakeObjectStore struct {
	mu      sync.Mutex
	blobs   map[string]bool
	err     error
	deleted []string
}

func newFakeObjectStore(paths ...string) *fakeObjectStore {
	s := &fakeObjectStore{blobs: map[string]bool{}}
	for _, p := range paths {
		s.blobs[p] = true
	}
	return s
}

func (s *fakeObjectStore) DeleteBlob(_ context.Context, container, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p := container + "/" + key
	if !s.blobs[p] {
		return ErrBlobNotFound
	}
	delete(s.blobs, p)
	s.deleted = append(s.deleted, p)
	return nil
}

// Package blobstore хранит содержимое загруженных файлов.
package blobstore

import (
	"DataSentinel/internal/repo"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound: содержимого с таким ключом нет.
var ErrNotFound = errors.New("blob not found")

// Store: хранилище содержимого файлов по ключу.
type Store interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete удаляет содержимое; отсутствие ключа не ошибка.
	Delete(ctx context.Context, key string) error
}

// DBStore хранит содержимое в таблице blobs основной БД.
type DBStore struct {
	blobs repo.BlobRepository
}

func NewDBStore(blobs repo.BlobRepository) *DBStore {
	return &DBStore{blobs: blobs}
}

func (s *DBStore) Put(ctx context.Context, key string, content []byte, _ string) error {
	if _, err := s.blobs.CreateIfAbsent(ctx, key, content); err != nil {
		return fmt.Errorf("store blob %s: %w", key, err)
	}
	return nil
}

func (s *DBStore) Get(ctx context.Context, key string) ([]byte, error) {
	content, err := s.blobs.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	if err := s.blobs.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

package service

import "sync"

// KeyLock: мьютекс на ключ. Записи удаляются, когда ими никто не пользуется.
// Порядок захвата: file, затем partner; блокировки берутся до начала транзакции.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyEntry)}
}

// Lock захватывает ключ и возвращает функцию освобождения.
func (k *KeyLock) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *KeyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func fileKey(id string) string    { return "file:" + id }
func requestKey(id string) string { return "request:" + id }
func partnerKey(id string) string { return "partner:" + id }

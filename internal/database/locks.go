package database

import "sync"

// keyedMutex serializes operations per entity id. Reservations on different
// resources and ledger mutations on different accounts proceed in parallel;
// only same-key operations queue behind each other. Entries are never
// removed: the key space is bounded by the number of accounts/resources.
type keyedMutex struct {
	mu sync.Map // int64 -> *sync.Mutex
}

func (k *keyedMutex) lock(id int64) *sync.Mutex {
	v, _ := k.mu.LoadOrStore(id, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m
}

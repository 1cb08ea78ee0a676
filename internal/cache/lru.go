package cache

// lruNode is a node in a doubly-linked LRU list holding a key/value pair.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// lru is a capacity-bounded map with least-recently-used eviction.
// The head is the most recently used, tail is least recently used.
// It is not thread-safe; callers must handle synchronization.
type lru[K comparable, V any] struct {
	items    map[K]*lruNode[K, V]
	head     *lruNode[K, V]
	tail     *lruNode[K, V]
	capacity int
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	return &lru[K, V]{
		items:    make(map[K]*lruNode[K, V]),
		capacity: capacity,
	}
}

// get returns the value for key and marks it most recently used.
func (l *lru[K, V]) get(key K) (V, bool) {
	n, ok := l.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	l.moveToFront(n)
	return n.value, true
}

// put stores value under key and returns how many entries were evicted.
func (l *lru[K, V]) put(key K, value V) int {
	if n, ok := l.items[key]; ok {
		n.value = value
		l.moveToFront(n)
		return 0
	}

	evicted := 0
	for len(l.items) >= l.capacity && l.tail != nil {
		oldest := l.tail
		l.unlink(oldest)
		delete(l.items, oldest.key)
		evicted++
	}

	n := &lruNode[K, V]{key: key, value: value}
	l.pushFront(n)
	l.items[key] = n
	return evicted
}

// remove deletes key. Returns true if it was present.
func (l *lru[K, V]) remove(key K) bool {
	n, ok := l.items[key]
	if !ok {
		return false
	}
	l.unlink(n)
	delete(l.items, key)
	return true
}

func (l *lru[K, V]) len() int {
	return len(l.items)
}

func (l *lru[K, V]) clear() {
	l.items = make(map[K]*lruNode[K, V])
	l.head = nil
	l.tail = nil
}

func (l *lru[K, V]) pushFront(n *lruNode[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lru[K, V]) moveToFront(n *lruNode[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

// unlink removes n from the list without touching the map.
func (l *lru[K, V]) unlink(n *lruNode[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

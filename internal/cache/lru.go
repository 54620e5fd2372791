package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU потокобезопасный кэш в памяти с ограничением размера и временем жизни записей.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	now     func() time.Time
}

type lruItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// NewLRU создаёт кэш на maxSize записей, каждая живёт ttl с последнего обращения.
func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get возвращает значение и продлевает его время жизни.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	item := elem.Value.(*lruItem[T])
	now := c.now()
	if now.After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}
	item.expiresAt = now.Add(c.ttl)
	c.order.MoveToFront(elem)
	return item.data, true
}

// GetOrCreate возвращает существующее значение или сохраняет результат create.
// create вызывается под блокировкой и не должен обращаться к кэшу.
func (c *LRU[T]) GetOrCreate(key string, create func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*lruItem[T])
		if !now.After(item.expiresAt) {
			item.expiresAt = now.Add(c.ttl)
			c.order.MoveToFront(elem)
			return item.data, nil
		}
		c.removeElement(elem)
	}

	data, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	c.setLocked(key, data, now)
	return data, nil
}

// Set сохраняет значение, вытесняя самую давнюю запись при переполнении.
func (c *LRU[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, data, c.now())
}

// Delete удаляет запись.
func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Peek возвращает значение без продления времени жизни и без изменения порядка.
func (c *LRU[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	item := elem.Value.(*lruItem[T])
	if c.now().After(item.expiresAt) {
		return zero, false
	}
	return item.data, true
}

// Len возвращает число записей, включая ещё не удалённые просроченные.
func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanExpired удаляет просроченные записи и возвращает их количество.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*lruItem[T]).expiresAt) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *LRU[T]) setLocked(key string, data T, now time.Time) {
	item := &lruItem[T]{key: key, data: data, expiresAt: now.Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = item
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(item)
	if c.order.Len() > c.maxSize {
		c.removeElement(c.order.Back())
	}
}

func (c *LRU[T]) removeElement(elem *list.Element) {
	delete(c.items, elem.Value.(*lruItem[T]).key)
	c.order.Remove(elem)
}

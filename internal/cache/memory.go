package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type cacheItem struct {
	value      []byte
	expiration int64
}

// Memory es un caché TTL en proceso. Se usa cuando no hay Redis configurado;
// cada instancia de la API tiene el suyo.
type Memory struct {
	items map[string]cacheItem
	mu    sync.RWMutex
	ttl   time.Duration

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemory crea el caché y arranca la limpieza periódica de expirados
func NewMemory(ttl, cleanupInterval time.Duration) *Memory {
	c := &Memory{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go c.cleanupExpired(cleanupInterval)
	return c
}

// Set serializa y guarda en caché
func (c *Memory) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{
		value:      data,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
	return nil
}

// Get obtiene y deserializa del caché
func (c *Memory) Get(_ context.Context, key string, target any) (bool, error) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found || time.Now().UnixNano() > item.expiration {
		return false, nil
	}
	if err := json.Unmarshal(item.value, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// DeleteByPrefix elimina todas las claves que empiecen con un prefijo
func (c *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

// Size retorna el número de items en caché, incluidos los expirados aún no limpiados
func (c *Memory) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close detiene la limpieza periódica
func (c *Memory) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
	return nil
}

func (c *Memory) cleanupExpired(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purge(time.Now())
		}
	}
}

func (c *Memory) purge(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.items {
		if now.UnixNano() > item.expiration {
			delete(c.items, key)
		}
	}
}

package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL es la vigencia por defecto de un snapshot cacheado
const DefaultTTL = 60 * time.Second

// Item representa un elemento cacheado con expiración
type Item struct {
	Value      interface{}
	Expiration int64
}

// Cache es un cache en memoria con expiración, invalidación por etiquetas
// y deduplicación single-flight de recomputaciones concurrentes para la
// misma llave.
type Cache struct {
	items map[string]Item
	tags  map[string]map[string]struct{}
	mu    sync.RWMutex
	group singleflight.Group
}

// New crea una nueva instancia del cache
func New() *Cache {
	cache := &Cache{
		items: make(map[string]Item),
		tags:  make(map[string]map[string]struct{}),
	}

	// Goroutine de fondo para limpiar elementos expirados
	go func() {
		for {
			time.Sleep(time.Minute)
			cache.DeleteExpired()
		}
	}()

	return cache
}

// GetOrCompute devuelve el valor cacheado para la llave o lo calcula con
// computeFn. Llamadas concurrentes con la misma llave comparten un solo
// cálculo. Si el cálculo falla no se cachea nada: el error sube al caller
// y el valor previo (si existía) queda intacto.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, tags []string, computeFn func() (interface{}, error)) (interface{}, error) {
	if value, found := c.Get(key); found {
		return value, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Otro vuelo pudo haber poblado la llave mientras esperábamos
		if value, found := c.Get(key); found {
			return value, nil
		}

		value, err := computeFn()
		if err != nil {
			return nil, err
		}

		c.SetWithTags(key, value, ttl, tags)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set agrega un elemento al cache con la duración indicada
func (c *Cache) Set(key string, value interface{}, duration time.Duration) {
	c.SetWithTags(key, value, duration, nil)
}

// SetWithTags agrega un elemento asociándolo a etiquetas de invalidación
func (c *Cache) SetWithTags(key string, value interface{}, duration time.Duration, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item{
		Value:      value,
		Expiration: time.Now().Add(duration).UnixNano(),
	}

	for _, tag := range tags {
		if c.tags[tag] == nil {
			c.tags[tag] = make(map[string]struct{})
		}
		c.tags[tag][key] = struct{}{}
	}
}

// Get recupera un elemento del cache.
// Devuelve el valor y un booleano indicando si se encontró vigente.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}

	if time.Now().UnixNano() > item.Expiration {
		return nil, false
	}

	return item.Value, true
}

// Delete elimina un elemento del cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	for _, keys := range c.tags {
		delete(keys, key)
	}
}

// InvalidateTag elimina todas las llaves asociadas a la etiqueta,
// independientemente de su TTL (por ejemplo tras una corrección manual de
// datos)
func (c *Cache) InvalidateTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tags[tag] {
		delete(c.items, key)
	}
	delete(c.tags, tag)
}

// DeleteExpired elimina todos los elementos expirados
func (c *Cache) DeleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for k, v := range c.items {
		if now > v.Expiration {
			delete(c.items, k)
			for _, keys := range c.tags {
				delete(keys, k)
			}
		}
	}
}

// Clear vacía el cache por completo
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]Item)
	c.tags = make(map[string]map[string]struct{})
}

// Package cache guarda respuestas de POST /api/payments por Idempotency-Key sobre go-cache.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval cada cuánto se purgan las entradas vencidas.
const DefaultCleanupInterval = 10 * time.Minute

// ErrInProgress otra petición con la misma clave todavía no terminó.
var ErrInProgress = errors.New("petición con la misma Idempotency-Key en curso")

// ErrKeyReused la clave ya se usó con otro cuerpo de petición.
var ErrKeyReused = errors.New("clave de idempotencia reutilizada con otra petición")

// Fingerprint huella sha256 del cuerpo de la petición, guardada junto a la clave.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// StoredResponse respuesta HTTP guardada para repetirla tal cual.
type StoredResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

type entry struct {
	fingerprint string
	done        bool
	response    StoredResponse
}

// IdempotencyStore reserva claves y guarda la respuesta final durante ttl.
type IdempotencyStore struct {
	cache *goCache.Cache
	ttl   time.Duration
}

// NewIdempotencyStore crea el almacén; ttl <= 0 usa una hora.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &IdempotencyStore{
		cache: goCache.New(ttl, DefaultCleanupInterval),
		ttl:   ttl,
	}
}

// Begin reserva key para la petición con huella fingerprint. Si ya existe una respuesta la
// devuelve (replay); si la clave está reservada por otra petición retorna ErrInProgress.
// Una huella distinta a la guardada retorna ErrKeyReused.
func (s *IdempotencyStore) Begin(key, fingerprint string) (*StoredResponse, error) {
	if err := s.cache.Add(key, entry{fingerprint: fingerprint}, s.ttl); err == nil {
		return nil, nil
	}
	v, ok := s.cache.Get(key)
	if !ok {
		// venció entre Add y Get: reintentar la reserva una vez
		if err := s.cache.Add(key, entry{fingerprint: fingerprint}, s.ttl); err == nil {
			return nil, nil
		}
		return nil, ErrInProgress
	}
	e := v.(entry)
	if e.fingerprint != fingerprint {
		return nil, ErrKeyReused
	}
	if !e.done {
		return nil, ErrInProgress
	}
	resp := e.response
	return &resp, nil
}

// Complete guarda la respuesta final de key junto con la huella de la petición.
func (s *IdempotencyStore) Complete(key, fingerprint string, resp StoredResponse) {
	s.cache.Set(key, entry{fingerprint: fingerprint, done: true, response: resp}, s.ttl)
}

// Release libera la reserva sin guardar respuesta (la petición falló y puede reintentarse).
func (s *IdempotencyStore) Release(key string) {
	s.cache.Delete(key)
}

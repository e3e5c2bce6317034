package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Billing-api/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotency_ReservaYReplay(t *testing.T) {
	s := cache.NewIdempotencyStore(time.Minute)

	resp, err := s.Begin("k1", "h1")
	require.NoError(t, err)
	assert.Nil(t, resp, "primera vez: sin respuesta guardada")

	_, err = s.Begin("k1", "h1")
	assert.ErrorIs(t, err, cache.ErrInProgress)

	s.Complete("k1", "h1", cache.StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"ok":true}`)})

	replay, err := s.Begin("k1", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.Status)
	assert.JSONEq(t, `{"ok":true}`, string(replay.Body))
}

func TestIdempotency_ReleasePermiteReintentar(t *testing.T) {
	s := cache.NewIdempotencyStore(time.Minute)
	_, err := s.Begin("k", "h")
	require.NoError(t, err)
	s.Release("k")

	resp, err := s.Begin("k", "h")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestIdempotency_Vence(t *testing.T) {
	s := cache.NewIdempotencyStore(20 * time.Millisecond)
	_, err := s.Begin("k", "h")
	require.NoError(t, err)
	s.Complete("k", "h", cache.StoredResponse{Status: 201})

	time.Sleep(40 * time.Millisecond)
	resp, err := s.Begin("k", "h")
	require.NoError(t, err)
	assert.Nil(t, resp, "la respuesta vencida no se repite")
}

func TestIdempotency_SoloUnaReservaConcurrente(t *testing.T) {
	s := cache.NewIdempotencyStore(time.Minute)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		reserved int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Begin("misma", "h"); err == nil {
				mu.Lock()
				reserved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, reserved)
}

func TestIdempotency_MismaClaveOtroCuerpo(t *testing.T) {
	s := cache.NewIdempotencyStore(time.Minute)
	first := cache.Fingerprint([]byte(`{"amount":"100.00"}`))
	other := cache.Fingerprint([]byte(`{"amount":"50.00"}`))
	require.NotEqual(t, first, other)

	_, err := s.Begin("k", first)
	require.NoError(t, err)
	_, err = s.Begin("k", other)
	assert.ErrorIs(t, err, cache.ErrKeyReused, "reservada con otra huella")

	s.Complete("k", first, cache.StoredResponse{Status: 201})
	resp, err := s.Begin("k", other)
	assert.ErrorIs(t, err, cache.ErrKeyReused, "completada con otra huella")
	assert.Nil(t, resp)

	replay, err := s.Begin("k", first)
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.Status)
}

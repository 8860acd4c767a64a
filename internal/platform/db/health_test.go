package db

import (
	"encoding/json"
	"testing"
)

func TestPoolHealth_HealthyWhenConnected(t *testing.T) {
	h := &PoolHealth{
		TotalConns:    10,
		IdleConns:     5,
		AcquiredConns: 5,
		MaxConns:      20,
		Healthy:       true,
	}

	if !h.Healthy {
		t.Error("expected Healthy to be true with open connections")
	}
	if h.TotalConns != h.IdleConns+h.AcquiredConns {
		t.Errorf("expected total %d to equal idle %d + acquired %d",
			h.TotalConns, h.IdleConns, h.AcquiredConns)
	}
}

func TestPoolHealth_UnhealthyWithoutConnections(t *testing.T) {
	h := &PoolHealth{MaxConns: 20}
	if h.Healthy {
		t.Error("expected Healthy to be false when TotalConns is 0")
	}
}

func TestPoolHealth_JSONShape(t *testing.T) {
	h := &PoolHealth{TotalConns: 3, IdleConns: 2, AcquiredConns: 1, MaxConns: 20, Healthy: true}

	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"total_conns", "idle_conns", "acquired_conns", "max_conns", "healthy"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in health payload", key)
		}
	}
}

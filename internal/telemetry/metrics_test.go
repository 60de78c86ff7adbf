package telemetry

import "testing"

func TestInitMetrics(t *testing.T) {
	m, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics failed: %v", err)
	}

	// Without a configured meter provider these record through the no-op
	// meter; they must still be safe to call.
	m.RecordRequest("GET", "/api/articles/a/similar", "200", 0.05)
	m.RecordSearch(false, 1.2)
	m.RecordCacheHit(true)
	m.RecordCacheHit(false)
	m.RecordTokensUsed(128, "gemini-2.0-flash")
	m.RecordCircuitBreakerState("gemini", "open")
}

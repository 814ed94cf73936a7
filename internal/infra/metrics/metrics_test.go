package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLLMGenerationDerivesTotal(t *testing.T) {
	ObserveLLMGeneration("test-model-a", time.Second, 120, 40, 0)

	if got := testutil.ToFloat64(LLMTokensTotal.WithLabelValues("test-model-a", "prompt")); got != 120 {
		t.Fatalf("prompt tokens = %v, want 120", got)
	}
	if got := testutil.ToFloat64(LLMTokensTotal.WithLabelValues("test-model-a", "completion")); got != 40 {
		t.Fatalf("completion tokens = %v, want 40", got)
	}
	if got := testutil.ToFloat64(LLMTokensTotal.WithLabelValues("test-model-a", "total")); got != 160 {
		t.Fatalf("total tokens = %v, want 160 (derived from prompt+completion)", got)
	}
}

func TestObserveLLMGenerationExplicitTotal(t *testing.T) {
	ObserveLLMGeneration("test-model-b", time.Second, 10, 5, 20)

	if got := testutil.ToFloat64(LLMTokensTotal.WithLabelValues("test-model-b", "total")); got != 20 {
		t.Fatalf("total tokens = %v, want the explicit 20", got)
	}
}

func TestObserveNetworkRequestStatus(t *testing.T) {
	ObserveNetworkRequest("testcomp", "op", "target", time.Now(), nil)
	if got := testutil.ToFloat64(NetworkRequestTotal.WithLabelValues("testcomp", "op", "target", "success")); got != 1 {
		t.Fatalf("success count = %v, want 1", got)
	}
}

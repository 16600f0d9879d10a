package bulk

import (
	"sync"
	"testing"

	"github.com/talkincode/qsadmin/pkg/gateway"
)

func TestRun_CountsAddUp(t *testing.T) {
	ids := []uint64{10, 20, 30, 40, 50}

	result := Run(ids, 1, func(id uint64) error {
		if id == 20 || id == 40 {
			return &gateway.RemoteError{Status: 500, Message: "boom"}
		}
		return nil
	})

	if got := result.SuccessCount + len(result.Failures); got != len(ids) {
		t.Fatalf("expected outcomes for all %d ids, got %d", len(ids), got)
	}
	if result.SuccessCount != 3 {
		t.Fatalf("expected 3 successes, got %d", result.SuccessCount)
	}
}

func TestRun_PartialFailureDoesNotAbort(t *testing.T) {
	var called []uint64

	result := Run([]uint64{1, 2, 3}, 1, func(id uint64) error {
		called = append(called, id)
		if id == 2 {
			return &gateway.RemoteError{Status: 404, Message: "user not found"}
		}
		return nil
	})

	if len(called) != 3 {
		t.Fatalf("expected all 3 ids processed, got %v", called)
	}
	if result.SuccessCount != 2 {
		t.Fatalf("expected 2 successes, got %d", result.SuccessCount)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].ID != 2 || result.Failures[0].Err.Status != 404 {
		t.Fatalf("failure not attributed to id 2 with 404: %+v", result.Failures[0])
	}
}

func TestRun_FailureOrderMatchesInputWithWorkers(t *testing.T) {
	ids := []uint64{9, 7, 5, 3, 1, 8, 6, 4, 2}
	var mu sync.Mutex
	seen := map[uint64]bool{}

	result := Run(ids, 4, func(id uint64) error {
		mu.Lock()
		seen[id] = true
		mu.Unlock()
		if id%2 != 0 {
			return &gateway.RemoteError{Status: 409, Message: "odd"}
		}
		return nil
	})

	if len(seen) != len(ids) {
		t.Fatalf("expected all ids executed, got %d", len(seen))
	}

	want := []uint64{9, 7, 5, 3, 1}
	if len(result.Failures) != len(want) {
		t.Fatalf("expected %d failures, got %d", len(want), len(result.Failures))
	}
	for i, f := range result.Failures {
		if f.ID != want[i] {
			t.Fatalf("failure %d: expected id %d, got %d", i, want[i], f.ID)
		}
	}
}

func TestRun_PlainErrorBecomesTransportError(t *testing.T) {
	result := Run([]uint64{1}, 1, func(id uint64) error {
		return errTest
	})

	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	f := result.Failures[0]
	if f.Err.Status != 0 || f.Err.Message != "test failure" {
		t.Fatalf("expected status-0 wrapper, got %+v", f.Err)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	result := Run(nil, 4, func(id uint64) error {
		t.Fatal("op must not be called for empty input")
		return nil
	})
	if result.SuccessCount != 0 || len(result.Failures) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

var errTest = &testError{}

type testError struct{}

func (e *testError) Error() string { return "test failure" }

package booking

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testDay = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

func TestMemoryRegistry_SequentialTokens(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	doctorID := uuid.New()

	for want := 1; want <= 5; want++ {
		token, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("reservation %d: expected ok with unlimited capacity", want)
		}
		if token != want {
			t.Errorf("reservation %d: expected token %d, got %d", want, want, token)
		}
	}
}

func TestMemoryRegistry_CapacityEnforcement(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	doctorID := uuid.New()

	for i := 0; i < 2; i++ {
		_, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, 2)
		if err != nil || !ok {
			t.Fatalf("reservation %d: ok=%v err=%v", i+1, ok, err)
		}
	}

	token, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected reservation past capacity to be refused")
	}
	if token != 0 {
		t.Errorf("refused reservation must not consume a token, got %d", token)
	}

	issued, err := r.IssuedCount(ctx, doctorID, testDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued != 2 {
		t.Errorf("expected issued count 2 after refusal, got %d", issued)
	}
}

func TestMemoryRegistry_CapacityRefreshedPerReservation(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	doctorID := uuid.New()

	for i := 0; i < 2; i++ {
		_, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, 2)
		if err != nil || !ok {
			t.Fatalf("reservation %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	if _, ok, _ := r.ReserveNextToken(ctx, doctorID, testDay, 2); ok {
		t.Fatal("expected refusal at capacity 2")
	}

	// Raising the doctor's daily capacity frees up the day again.
	token, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected the raised capacity to apply to the next reservation")
	}
	if token != 3 {
		t.Errorf("expected token 3 after two issued, got %d", token)
	}

	// Shrinking below the issued count refuses new tokens but claws none back.
	if _, ok, _ := r.ReserveNextToken(ctx, doctorID, testDay, 1); ok {
		t.Fatal("expected refusal once capacity shrinks below issued count")
	}
	issued, err := r.IssuedCount(ctx, doctorID, testDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued != 3 {
		t.Errorf("expected issued count 3, got %d", issued)
	}
}

func TestMemoryRegistry_KeysAreIndependent(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	d1, d2 := uuid.New(), uuid.New()
	otherDay := testDay.AddDate(0, 0, 1)

	if _, ok, _ := r.ReserveNextToken(ctx, d1, testDay, 1); !ok {
		t.Fatal("first reservation for d1 should succeed")
	}
	if _, ok, _ := r.ReserveNextToken(ctx, d1, testDay, 1); ok {
		t.Fatal("d1 is at capacity")
	}

	// A full day for one doctor must not affect another doctor or day.
	if token, ok, _ := r.ReserveNextToken(ctx, d2, testDay, 1); !ok || token != 1 {
		t.Errorf("expected token 1 for d2, got token=%d ok=%v", token, ok)
	}
	if token, ok, _ := r.ReserveNextToken(ctx, d1, otherDay, 1); !ok || token != 1 {
		t.Errorf("expected token 1 for d1 on another day, got token=%d ok=%v", token, ok)
	}
}

func TestMemoryRegistry_IssuedCountUnknownKey(t *testing.T) {
	r := NewMemoryRegistry()
	issued, err := r.IssuedCount(context.Background(), uuid.New(), testDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued != 0 {
		t.Errorf("expected 0 for untouched key, got %d", issued)
	}
}

func TestMemoryRegistry_ConcurrentReservations(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	doctorID := uuid.New()

	const n = 100
	tokens := make([]int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			token, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, 0)
			if err != nil || !ok {
				t.Errorf("goroutine %d: ok=%v err=%v", i, ok, err)
				return
			}
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	sort.Ints(tokens)
	for i, token := range tokens {
		if token != i+1 {
			t.Fatalf("expected gapless sequence 1..%d, found %d at position %d", n, token, i)
		}
	}
}

func TestMemoryRegistry_ConcurrentWithCapacity(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()
	doctorID := uuid.New()

	const n = 50
	const capacity = 10
	var granted sync.Map
	grantedCount := 0
	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			token, ok, err := r.ReserveNextToken(ctx, doctorID, testDay, capacity)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !ok {
				return
			}
			if _, dup := granted.LoadOrStore(token, true); dup {
				t.Errorf("token %d granted twice", token)
			}
			mu.Lock()
			grantedCount++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if grantedCount != capacity {
		t.Errorf("expected exactly %d grants, got %d", capacity, grantedCount)
	}
}

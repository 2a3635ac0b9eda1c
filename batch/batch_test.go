package batch

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

// fakeCheck classifies by address shape alone so no test touches the network: *@good.test is valid,
// *@bad.test is doubtful, anything without an @ is invalid.
func fakeCheck(_ context.Context, req validator.Request) validator.Result {
	email := strings.TrimSpace(req.Email)
	r := validator.Result{Email: email, Status: types.StatusInvalid}

	if !strings.Contains(email, "@") {
		return r
	}

	r.ValidFormat = true
	if strings.HasSuffix(email, "@bad.test") {
		r.HasMX = types.False
		r.DomainExists = types.False
		r.Status = types.StatusDoubtful
		return r
	}

	r.HasMX = types.True
	r.DomainExists = types.True
	r.Status = types.StatusValid
	return r
}

func TestRunReturnsOneResultPerAddress(t *testing.T) {
	addresses := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		addresses = append(addresses, "user"+string(rune('a'+i%26))+"@good.test")
	}

	for _, workers := range []int{1, 10, len(addresses)} {
		e := NewEngine(fakeCheck, WithWorkers(workers))
		results, summary := e.Run(context.Background(), addresses, validator.Request{CheckMX: true, CheckDomain: true})

		if len(results) != len(addresses) {
			t.Errorf("workers=%d: expected %d results, got %d", workers, len(addresses), len(results))
		}

		if summary.Total() != len(addresses) {
			t.Errorf("workers=%d: expected summary total %d, got %d", workers, len(addresses), summary.Total())
		}

		// Completion order is unordered, correlate on the email field
		want := append([]string(nil), addresses...)
		got := make([]string, 0, len(results))
		for _, r := range results {
			got = append(got, r.Email)
		}

		sort.Strings(want)
		sort.Strings(got)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("workers=%d: result set doesn't match input set at %d: %q vs %q", workers, i, got[i], want[i])
			}
		}
	}
}

func TestRunMixedBatch(t *testing.T) {
	addresses := []string{"malformed-address", "user@good.test", "user@bad.test"}

	e := NewEngine(fakeCheck, WithWorkers(2))
	results, summary := e.Run(context.Background(), addresses, validator.Request{CheckMX: true, CheckDomain: true})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	if summary.Valid != 1 || summary.Doubtful != 1 || summary.Invalid != 1 {
		t.Errorf("Expected counts {valid:1, doubtful:1, invalid:1}, got %+v", summary)
	}
}

func TestRunProgressIsMonotonicAndComplete(t *testing.T) {
	addresses := make([]string, 50)
	for i := range addresses {
		addresses[i] = "user@good.test"
	}

	var emissions []int
	e := NewEngine(fakeCheck,
		WithWorkers(8),
		WithProgress(func(completed, total int) {
			if total != len(addresses) {
				t.Errorf("Expected total %d, got %d", len(addresses), total)
			}
			emissions = append(emissions, completed)
		}),
	)

	e.Run(context.Background(), addresses, validator.Request{})

	if len(emissions) != len(addresses) {
		t.Fatalf("Expected one emission per completion, got %d", len(emissions))
	}

	for i := 1; i < len(emissions); i++ {
		if emissions[i] < emissions[i-1] {
			t.Fatalf("Progress went backwards at %d: %d after %d", i, emissions[i], emissions[i-1])
		}
	}

	if final := emissions[len(emissions)-1]; final != len(addresses) {
		t.Errorf("Expected the final emission to equal the total, got %d", final)
	}
}

func TestRunEmptyInput(t *testing.T) {
	e := NewEngine(fakeCheck, WithProgress(func(completed, total int) {
		t.Error("No progress events expected for an empty batch")
	}))

	results, summary := e.Run(context.Background(), nil, validator.Request{})

	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}

	if summary.Total() != 0 {
		t.Errorf("Expected an empty summary, got %+v", summary)
	}
}

func TestRunRecoversPanickingCheck(t *testing.T) {
	var calls int
	e := NewEngine(func(_ context.Context, req validator.Request) validator.Result {
		calls++
		if req.Email == "boom@good.test" {
			panic("misbehaving check")
		}
		return fakeCheck(context.Background(), req)
	}, WithWorkers(1))

	results, summary := e.Run(context.Background(), []string{"user@good.test", "boom@good.test"}, validator.Request{})

	if len(results) != 2 {
		t.Fatalf("Expected the panicking task to be kept, got %d results", len(results))
	}

	if summary.Invalid != 1 || summary.Valid != 1 {
		t.Errorf("Expected the panic to map to an invalid result, got %+v", summary)
	}
}

func TestRunStopsSubmittingWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var seen int
	e := NewEngine(func(_ context.Context, req validator.Request) validator.Result {
		seen++
		cancel()
		return fakeCheck(context.Background(), req)
	}, WithWorkers(1))

	addresses := make([]string, 100)
	for i := range addresses {
		addresses[i] = "user@good.test"
	}

	results, _ := e.Run(ctx, addresses, validator.Request{})

	if len(results) == 0 {
		t.Error("Expected in-flight work to complete")
	}

	if len(results) == len(addresses) {
		t.Error("Expected submission to stop after cancellation")
	}

	if len(results) != seen {
		t.Errorf("Expected every submitted task to produce a result, submitted %d got %d", seen, len(results))
	}
}

func TestWithWorkersIgnoresNonPositive(t *testing.T) {
	e := NewEngine(fakeCheck, WithWorkers(0))

	if e.workers != DefaultWorkers {
		t.Errorf("Expected the default worker count, got %d", e.workers)
	}
}

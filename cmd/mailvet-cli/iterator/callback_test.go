package iterator

import (
	"errors"
	"reflect"
	"testing"
)

func sliceIterator(values []string) *CallbackIterator {
	var pos int
	return NewCallbackIterator(
		func() bool {
			return pos < len(values)
		},
		func() (string, error) {
			v := values[pos]
			pos++
			return v, nil
		},
		func() error {
			return nil
		},
	)
}

func TestCollect(t *testing.T) {
	it := sliceIterator([]string{"one@example.org", "", "two@example.org"})

	got, err := it.Collect()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"one@example.org", "two@example.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestCollectReturnsCloseError(t *testing.T) {
	wantErr := errors.New("late failure")
	it := NewCallbackIterator(
		func() bool { return false },
		func() (string, error) { return "", nil },
		func() error { return wantErr },
	)

	if _, err := it.Collect(); err != wantErr {
		t.Errorf("Collect() error = %v, want %v", err, wantErr)
	}
}

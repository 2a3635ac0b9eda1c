package validator

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/mailvet/mailvet/types"
)

func newTestValidator(lookup LookupResolver) EmailValidator {
	return NewEmailAddressValidator(NewResolver(lookup, time.Second))
}

func TestCheckMalformedAddress(t *testing.T) {
	v := newTestValidator(stubLookup{mxErr: errors.New("must not be called"), hostErr: errors.New("must not be called")})

	got := v.Check(context.Background(), Request{Email: "not-an-email", CheckMX: true, CheckDomain: true})
	want := Result{
		Email:        "not-an-email",
		ValidFormat:  false,
		HasMX:        types.Unknown,
		DomainExists: types.Unknown,
		Status:       types.StatusInvalid,
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Check() = %+v, want %+v", got, want)
	}
}

func TestCheckResolvableAddress(t *testing.T) {
	v := newTestValidator(stubLookup{
		mx:    map[string][]*net.MX{"example.com": {{Host: "mail.example.com."}}},
		hosts: map[string][]string{"example.com": {"93.184.216.34"}},
	})

	got := v.Check(context.Background(), Request{Email: "user@example.com", CheckMX: true, CheckDomain: true})
	want := Result{
		Email:        "user@example.com",
		ValidFormat:  true,
		HasMX:        types.True,
		DomainExists: types.True,
		Status:       types.StatusValid,
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Check() = %+v, want %+v", got, want)
	}
}

func TestCheckUnresolvableAddress(t *testing.T) {
	v := newTestValidator(stubLookup{
		mxErr:   errors.New("no such host"),
		hostErr: errors.New("no such host"),
	})

	got := v.Check(context.Background(), Request{Email: "user@nonexistent-domain-xyz123.test", CheckMX: true, CheckDomain: true})
	want := Result{
		Email:        "user@nonexistent-domain-xyz123.test",
		ValidFormat:  true,
		HasMX:        types.False,
		DomainExists: types.False,
		Status:       types.StatusDoubtful,
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Check() = %+v, want %+v", got, want)
	}
}

func TestCheckWithoutNetworkChecks(t *testing.T) {
	v := newTestValidator(stubLookup{mxErr: errors.New("must not be called"), hostErr: errors.New("must not be called")})

	got := v.Check(context.Background(), Request{Email: "user@example.com"})
	want := Result{
		Email:        "user@example.com",
		ValidFormat:  true,
		HasMX:        types.Unknown,
		DomainExists: types.Unknown,
		Status:       types.StatusValid,
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Check() = %+v, want %+v", got, want)
	}
}

func TestCheckTrimsInput(t *testing.T) {
	v := newTestValidator(stubLookup{})

	got := v.Check(context.Background(), Request{Email: "  user@example.com\n"})
	if got.Email != "user@example.com" {
		t.Errorf("Expected the input to be trimmed, got %q", got.Email)
	}

	if !got.ValidFormat {
		t.Error("Expected the trimmed input to pass the format gate")
	}
}

func TestCheckSingleNegativeSignalDemotes(t *testing.T) {
	// MX is absent, the domain itself resolves
	v := newTestValidator(stubLookup{
		hosts: map[string][]string{"example.com": {"93.184.216.34"}},
	})

	got := v.Check(context.Background(), Request{Email: "user@example.com", CheckMX: true, CheckDomain: true})

	if got.Status != types.StatusDoubtful {
		t.Errorf("Expected a single negative signal to demote to doubtful, got %s", got.Status)
	}

	if got.HasMX != types.False || got.DomainExists != types.True {
		t.Errorf("Unexpected signals, has_mx=%s domain_exists=%s", got.HasMX, got.DomainExists)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	v := newTestValidator(stubLookup{
		mx:    map[string][]*net.MX{"example.com": {{Host: "mail.example.com."}}},
		hosts: map[string][]string{"example.com": {"93.184.216.34"}},
	})

	req := Request{Email: "user@example.com", CheckMX: true, CheckDomain: true}
	first := v.Check(context.Background(), req)
	second := v.Check(context.Background(), req)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Two runs over the same network state differ: %+v vs %+v", first, second)
	}
}

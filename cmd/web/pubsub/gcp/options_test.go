package gcp

import (
	"reflect"
	"testing"
)

func TestWithSubscriptionConcurrencyCount(t *testing.T) {
	svc := PubSubSvc{
		subscriptionNumProcs: -10, // initial bad value
	}

	WithSubscriptionConcurrencyCount(10)(&svc)

	if svc.subscriptionNumProcs != 10 {
		t.Errorf("WithSubscriptionConcurrencyCount() = %v, want %v", svc.subscriptionNumProcs, 10)
	}
}

func TestWithSubscriptionLabels(t *testing.T) {
	svc := PubSubSvc{
		subscriptionLabels: []string{"foo"},
	}

	WithSubscriptionLabels([]string{"a"})(&svc)

	if !reflect.DeepEqual(svc.subscriptionLabels, []string{"a"}) {
		t.Errorf("WithSubscriptionLabels() = %v, want %v", svc.subscriptionLabels, []string{"a"})
	}
}

func TestNewPubSubSvcFiltersEmptyLabels(t *testing.T) {
	svc := NewPubSubSvc(nil, nil, "topic", WithSubscriptionLabels([]string{"host", "", "v1"}))

	if got := svc.getSubscriptionID(); got != "host-v1" {
		t.Errorf("Expected empty labels to be dropped, got subscription id %q", got)
	}
}

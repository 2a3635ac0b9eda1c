package validator

import (
	"context"
	"strings"

	"github.com/mailvet/mailvet/types"
)

// Request describes one address to check and which network probes to run for it.
type Request struct {
	Email       string
	CheckMX     bool
	CheckDomain bool
}

// CheckFn is the contract the batch engine and the web proxies compose around.
type CheckFn func(ctx context.Context, req Request) Result

func NewEmailAddressValidator(resolver Resolver) EmailValidator {
	return EmailValidator{
		resolver: resolver,
	}
}

type EmailValidator struct {
	resolver Resolver
}

// Check validates a single address: trim, format gate, then the requested DNS probes. Syntactically invalid
// addresses short-circuit, no network calls are made for them and both network signals stay Unknown.
func (v EmailValidator) Check(ctx context.Context, req Request) Result {
	email := strings.TrimSpace(req.Email)
	result := Result{
		Email:  email,
		Status: types.StatusInvalid,
	}

	if !IsValidFormat(email) {
		return result
	}

	result.ValidFormat = true

	parts, err := types.NewEmailParts(email)
	if err != nil {
		// Can't happen for input that passed the format gate, recorded as Invalid rather than dropped
		result.ValidFormat = false
		return result
	}

	if req.CheckMX {
		result.HasMX = types.TristateFromBool(v.resolver.HasMX(ctx, parts.Domain))
	}

	if req.CheckDomain {
		result.DomainExists = types.TristateFromBool(v.resolver.DomainExists(ctx, parts.Domain))
	}

	result.Status = Classify(result, req)
	return result
}

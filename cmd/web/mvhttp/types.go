package mvhttp

import (
	"errors"

	"github.com/mailvet/mailvet/types"
)

var (
	ErrMissingBody            = errors.New("missing body")
	ErrInvalidRequest         = errors.New("request is invalid")
	ErrBodyTooLarge           = errors.New("request body too large")
	ErrUnsupportedContentType = errors.New("unsupported content-type")
)

var empty = make([]string, 0)

type Response interface {
	PrepareResponse()
}

type CheckRequest struct {
	Email        string `json:"email"`
	SkipMX       bool   `json:"skip_mx"`
	SkipDomain   bool   `json:"skip_domain"`
	Alternatives bool   `json:"alternatives"`
}

type CheckResponse struct {
	Email        string         `json:"email"`
	ValidFormat  bool           `json:"valid_format"`
	HasMX        types.Tristate `json:"has_mx"`
	DomainExists types.Tristate `json:"domain_exists"`
	Status       types.Status   `json:"status"`
	Alternative  string         `json:"alternative,omitempty"`
	CacheHitTTL  int64          `json:"cache_ttl_sec,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func (r *CheckResponse) PrepareResponse() {}

type ExtractRequest struct {
	Text string `json:"text"`
}

type ExtractResponse struct {
	Emails []string `json:"emails"`
	Error  string   `json:"error,omitempty"`
}

func (r *ExtractResponse) PrepareResponse() {
	if r.Emails == nil {
		r.Emails = empty
	}
}

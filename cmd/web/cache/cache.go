// Package cache keeps recently verified domains in memory so repeated checks for the same domain skip the
// network probes until the entry expires. Recipients are stored as one-way hashes, the cache never holds a
// full address in clear text.
package cache

import (
	"bytes"
	"errors"
	"hash"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

var (
	ErrInvalidDomainSyntax = errors.New("invalid domain syntax")
	ErrNotPresent          = errors.New("value not present")
)

type Domain string
type Recipient []byte

type Hit struct {
	Recipients   []Recipient
	ValidUntil   time.Time
	HasMX        types.Tristate
	DomainExists types.Tristate
}

func New(h hash.Hash, ttl time.Duration) *HitList {
	return &HitList{
		hits: make(map[Domain]Hit),
		h:    h,
		ttl:  ttl,
	}
}

type HitList struct {
	hits map[Domain]Hit
	ttl  time.Duration
	lock sync.RWMutex
	h    hash.Hash
}

// Has returns true if HitList knows about (part of) the argument
func (hl *HitList) Has(parts types.EmailParts) (domain, local bool) {
	inputDomain := Domain(strings.ToLower(parts.Domain))

	// The full lock, hashing mutates shared state.
	hl.lock.Lock()
	defer hl.lock.Unlock()

	var hit Hit
	if hit, domain = hl.hits[inputDomain]; domain {
		recipient := hl.hashRecipientLocked(parts.Local)
		for _, v := range hit.Recipients {
			if bytes.Equal(recipient, v) {
				local = true
				return
			}
		}
	}

	return
}

// GetDomainSignals returns the cached network signals for a domain, with the remaining TTL. Expired entries
// and entries without any known network signal report ErrNotPresent.
func (hl *HitList) GetDomainSignals(d Domain) (Hit, error) {
	hl.lock.RLock()
	hit, ok := hl.hits[Domain(strings.ToLower(string(d)))]
	hl.lock.RUnlock()

	if !ok || hit.ValidUntil.Before(time.Now()) {
		return Hit{}, ErrNotPresent
	}

	if hit.HasMX == types.Unknown && hit.DomainExists == types.Unknown {
		return Hit{}, ErrNotPresent
	}

	return hit, nil
}

// Add records the result for an address. Network signals merge in, a known signal is never downgraded back
// to Unknown by a later check that skipped it.
func (hl *HitList) Add(parts types.EmailParts, r validator.Result) error {
	return hl.AddDeadline(parts, r, hl.ttl)
}

func (hl *HitList) AddDeadline(parts types.EmailParts, r validator.Result, duration time.Duration) error {
	if len(parts.Domain) == 0 || len(parts.Local) == 0 {
		return ErrInvalidDomainSyntax
	}

	domain := Domain(strings.ToLower(parts.Domain))

	hl.lock.Lock()
	defer hl.lock.Unlock()

	recipient := hl.hashRecipientLocked(parts.Local)

	hit, ok := hl.hits[domain]
	if !ok {
		hl.hits[domain] = Hit{
			Recipients:   []Recipient{recipient},
			ValidUntil:   time.Now().Add(duration),
			HasMX:        r.HasMX,
			DomainExists: r.DomainExists,
		}

		return nil
	}

	if r.HasMX != types.Unknown {
		hit.HasMX = r.HasMX
	}

	if r.DomainExists != types.Unknown {
		hit.DomainExists = r.DomainExists
	}

	hit.ValidUntil = time.Now().Add(duration)

	var known bool
	for _, v := range hit.Recipients {
		if bytes.Equal(recipient, v) {
			known = true
			break
		}
	}

	if !known {
		hit.Recipients = append(hit.Recipients, recipient)
	}

	hl.hits[domain] = hit
	return nil
}

// AddInternalTypes records an already hashed recipient, used when loading persisted rows back in.
func (hl *HitList) AddInternalTypes(d Domain, r Recipient, vr validator.Result) {
	domain := Domain(strings.ToLower(string(d)))

	hl.lock.Lock()
	defer hl.lock.Unlock()

	hit, ok := hl.hits[domain]
	if !ok {
		hl.hits[domain] = Hit{
			Recipients:   []Recipient{r},
			ValidUntil:   time.Now().Add(hl.ttl),
			HasMX:        vr.HasMX,
			DomainExists: vr.DomainExists,
		}

		return
	}

	if vr.HasMX != types.Unknown {
		hit.HasMX = vr.HasMX
	}

	if vr.DomainExists != types.Unknown {
		hit.DomainExists = vr.DomainExists
	}

	var known bool
	for _, v := range hit.Recipients {
		if bytes.Equal(r, v) {
			known = true
			break
		}
	}

	if !known {
		hit.Recipients = append(hit.Recipients, r)
	}

	hl.hits[domain] = hit
}

// GetValidAndUsageSortedDomains returns the reachable domains, sorted by their associated recipients (high>low)
func (hl *HitList) GetValidAndUsageSortedDomains() []string {
	hl.lock.RLock()
	defer hl.lock.RUnlock()

	type usage struct {
		domain     string
		recipients int
	}

	usages := make([]usage, 0, len(hl.hits))
	for domain, hit := range hl.hits {
		if hit.HasMX != types.True && hit.DomainExists != types.True {
			continue
		}

		usages = append(usages, usage{domain: string(domain), recipients: len(hit.Recipients)})
	}

	sort.Slice(usages, func(i, j int) bool {
		return usages[i].recipients > usages[j].recipients
	})

	domains := make([]string, 0, len(usages))
	for _, u := range usages {
		domains = append(domains, u.domain)
	}

	return domains
}

// CreateInternalTypes builds the storage representation of an address, a lower-cased domain and a hashed
// recipient.
func (hl *HitList) CreateInternalTypes(parts types.EmailParts) (Domain, Recipient, error) {
	if len(parts.Domain) == 0 || len(parts.Local) == 0 {
		return "", nil, ErrInvalidDomainSyntax
	}

	hl.lock.Lock()
	recipient := hl.hashRecipientLocked(parts.Local)
	hl.lock.Unlock()

	return Domain(strings.ToLower(parts.Domain)), recipient, nil
}

func (hl *HitList) Len() int {
	hl.lock.RLock()
	defer hl.lock.RUnlock()

	return len(hl.hits)
}

// hashRecipientLocked needs the write lock held, the hash state is shared and stateful.
func (hl *HitList) hashRecipientLocked(local string) Recipient {
	hl.h.Reset()
	_, _ = hl.h.Write([]byte(strings.ToLower(local)))
	return hl.h.Sum(nil)
}

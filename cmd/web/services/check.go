package services

import (
	"context"
	"strings"
	"time"

	"github.com/Dynom/TySug/finder"
	"github.com/sirupsen/logrus"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

func NewCheckService(hitList *cache.HitList, f *finder.Finder, check validator.CheckFn, logger *logrus.Logger) CheckSvc {
	return CheckSvc{
		cache:  hitList,
		finder: f,
		check:  check,
		logger: logger.WithField("svc", "check"),
	}
}

type CheckSvc struct {
	cache  *cache.HitList
	finder *finder.Finder
	check  validator.CheckFn
	logger *logrus.Entry
}

type CheckResult struct {
	Result      validator.Result
	Alternative string
	CacheHitTTL time.Duration
}

// HandleCheckRequest verifies a single address. Domains verified recently are answered from the cache, a
// cache hit carries the remaining TTL. With includeAlternatives a likely intended domain is suggested for
// addresses that didn't come back Valid.
func (c *CheckSvc) HandleCheckRequest(ctx context.Context, req validator.Request, includeAlternatives bool) (CheckResult, error) {
	var res CheckResult
	var now = time.Now()

	req.Email = strings.TrimSpace(req.Email)

	parts, partsErr := types.NewEmailParts(req.Email)
	if partsErr == nil {
		if hit, err := c.cache.GetDomainSignals(cache.Domain(parts.Domain)); err == nil {
			res.Result, res.CacheHitTTL = resultFromCache(parts, req, hit, now)
		}
	}

	cacheHit := res.CacheHitTTL > 0
	if !cacheHit {
		res.Result = c.check(ctx, req)
	}

	c.logger.WithContext(ctx).WithFields(logrus.Fields{
		"email":     req.Email,
		"status":    res.Result.Status,
		"cache_hit": cacheHit,
	}).Debug("Ran check")

	if includeAlternatives && partsErr == nil && res.Result.Status != types.StatusValid {
		alt, score, exact := c.finder.FindCtx(ctx, parts.Domain)

		c.logger.WithContext(ctx).WithFields(logrus.Fields{
			"alt":   alt,
			"score": score,
			"exact": exact,
		}).Debug("Used Finder")

		if !exact && score > finder.WorstScoreValue {
			res.Alternative = parts.Local + `@` + alt
		}
	}

	return res, nil
}

// resultFromCache rebuilds a Result from cached domain signals. It reports a zero TTL when the cache can't
// answer every requested check, the caller then falls back to a live run.
func resultFromCache(parts types.EmailParts, req validator.Request, hit cache.Hit, now time.Time) (validator.Result, time.Duration) {
	if !validator.IsValidFormat(parts.Address) {
		return validator.Result{}, 0
	}

	r := validator.Result{
		Email:       parts.Address,
		ValidFormat: true,
	}

	if req.CheckMX {
		r.HasMX = hit.HasMX
	}

	if req.CheckDomain {
		r.DomainExists = hit.DomainExists
	}

	if (req.CheckMX && r.HasMX == types.Unknown) || (req.CheckDomain && r.DomainExists == types.Unknown) {
		return validator.Result{}, 0
	}

	r.Status = validator.Classify(r, req)
	return r, hit.ValidUntil.Sub(now)
}

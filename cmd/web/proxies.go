package main

import (
	"context"

	"github.com/Dynom/TySug/finder"
	"github.com/sirupsen/logrus"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/cmd/web/mvhttp/handlers"
	"github.com/mailvet/mailvet/cmd/web/persist"
	"github.com/mailvet/mailvet/cmd/web/pubsub"
	"github.com/mailvet/mailvet/cmd/web/pubsub/gcp"
	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

// validatorCacheProxy records every result with a passing format in the hit list, so the signals are
// available on the next check for the same domain
func validatorCacheProxy(hitList *cache.HitList, logger logrus.FieldLogger, fn validator.CheckFn) validator.CheckFn {
	logger = logger.WithField("middleware", "cache_proxy")
	return func(ctx context.Context, req validator.Request) validator.Result {
		vr := fn(ctx, req)

		if !vr.ValidFormat {
			return vr
		}

		parts, err := types.NewEmailParts(vr.Email)
		if err != nil {
			return vr
		}

		if err := hitList.Add(parts, vr); err != nil {
			logger.WithFields(logrus.Fields{
				handlers.RequestID.String(): ctx.Value(handlers.RequestID),
				"error":                     err,
				"email":                     vr.Email,
			}).Error("Hit list rejected value")
		}

		return vr
	}
}

// validatorPersistProxy persists results for addresses the hit list hadn't seen before
func validatorPersistProxy(storage persist.Persister, hitList *cache.HitList, logger logrus.FieldLogger, fn validator.CheckFn) validator.CheckFn {
	logger = logger.WithField("middleware", "persist_proxy")
	return func(ctx context.Context, req validator.Request) validator.Result {
		log := logger.WithField(handlers.RequestID.String(), ctx.Value(handlers.RequestID))

		var existed bool
		if parts, err := types.NewEmailParts(req.Email); err == nil {
			_, existed = hitList.Has(parts)
		}

		vr := fn(ctx, req)

		if !existed && vr.ValidFormat {
			parts, err := types.NewEmailParts(vr.Email)
			if err != nil {
				return vr
			}

			log = log.WithFields(logrus.Fields{
				"email":  vr.Email,
				"status": vr.Status,
			})

			d, r, err := hitList.CreateInternalTypes(parts)
			if err != nil {
				log.WithError(err).Warn("Unable to create internal structure from parts")
				return vr
			}

			if err := storage.Store(ctx, d, r, vr); err != nil {
				log.WithError(err).Error("Failed to persist value")
				return vr
			}

			log.Debug("Persisted result")
		}

		return vr
	}
}

// validatorNotifyProxy publishes results to sibling instances
func validatorNotifyProxy(svc *gcp.PubSubSvc, logger logrus.FieldLogger, fn validator.CheckFn) validator.CheckFn {
	logger = logger.WithField("middleware", "notification_publisher")
	return func(ctx context.Context, req validator.Request) validator.Result {
		log := logger.WithField(handlers.RequestID.String(), ctx.Value(handlers.RequestID))

		vr := fn(ctx, req)

		parts, err := types.NewEmailParts(vr.Email)
		if err != nil {
			return vr
		}

		data := pubsub.Data{
			Local:        parts.Local,
			Domain:       parts.Domain,
			ValidFormat:  vr.ValidFormat,
			HasMX:        vr.HasMX,
			DomainExists: vr.DomainExists,
			Status:       vr.Status,
		}

		if err := svc.Publish(ctx, data); err != nil {
			log.WithFields(logrus.Fields{
				"error": err,
				"data":  data,
			}).Error("Publishing failed")
		}

		return vr
	}
}

// validatorUpdateFinderProxy updates Finder whenever a new and reachable domain has been discovered
func validatorUpdateFinderProxy(f *finder.Finder, hitList *cache.HitList, logger logrus.FieldLogger, fn validator.CheckFn) validator.CheckFn {
	log := logger.WithField("middleware", "finder_updater")
	return func(ctx context.Context, req validator.Request) validator.Result {
		vr := fn(ctx, req)

		if vr.Status != types.StatusValid {
			return vr
		}

		parts, err := types.NewEmailParts(vr.Email)
		if err != nil {
			return vr
		}

		if !f.Exact(parts.Domain) {
			f.Refresh(hitList.GetValidAndUsageSortedDomains())

			log.WithFields(logrus.Fields{
				handlers.RequestID.String(): ctx.Value(handlers.RequestID),
				"domain":                    parts.Domain,
			}).Debug("Updated Finder")
		}

		return vr
	}
}

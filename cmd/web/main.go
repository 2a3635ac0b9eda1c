package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/Dynom/TySug/finder"
	gqlhandler "github.com/graphql-go/handler"
	"github.com/juju/ratelimit"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/cmd/web/config"
	"github.com/mailvet/mailvet/cmd/web/mvhttp"
	"github.com/mailvet/mailvet/cmd/web/mvhttp/handlers"
	"github.com/mailvet/mailvet/cmd/web/persist"
	"github.com/mailvet/mailvet/cmd/web/pubsub"
	"github.com/mailvet/mailvet/cmd/web/pubsub/gcp"
	"github.com/mailvet/mailvet/cmd/web/services"
	"github.com/mailvet/mailvet/runtimer"
	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

// Version contains the app version, the value is changed during compile time to the appropriate Git tag
var Version = "dev"

func main() {
	configFile := "config.toml"
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	conf, err := config.NewConfig(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(conf)
	if err != nil {
		panic(err)
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
	}).Info("Starting up...")

	h, err := newHashAlgorithm(conf.Server.Hash.Key)
	if err != nil {
		logger.WithError(err).Fatal("Unable to set up the hasher")
	}

	hitList := cache.New(h, conf.Server.Cache.TTL.AsDuration())

	var persister persist.Persister
	switch conf.Server.Backend.Driver {
	case "postgres":
		conn, err := sql.Open("postgres", conf.Server.Backend.URL)
		if err != nil {
			logger.WithError(err).Fatal("Unable to open the backend")
		}

		persister = persist.NewPostgres(conn, logger)
	default:
		persister = persist.NewMemory()
	}

	preload(hitList, persister, logger)

	var lookup validator.LookupResolver
	if conf.Server.Validator.Resolver != "" {
		ip := net.ParseIP(conf.Server.Validator.Resolver)
		if ip == nil {
			logger.WithField("resolver", conf.Server.Validator.Resolver).Fatal("Invalid resolver address configured")
		}

		lookup = validator.NewCustomLookupResolver(ip)
	}

	v := validator.NewEmailAddressValidator(validator.NewResolver(lookup, conf.Server.Validator.ProbeTimeout.AsDuration()))

	myFinder, err := finder.New(
		hitList.GetValidAndUsageSortedDomains(),
		finder.WithLengthTolerance(conf.Server.Finder.LengthTolerance),
		finder.WithAlgorithm(finder.NewJaroWinklerDefaults()),
	)

	if err != nil {
		logger.WithError(err).Fatal("Unable to set up the finder")
	}

	rt := runtimer.New(syscall.SIGINT, syscall.SIGTERM)
	rt.RegisterCallback(func(s os.Signal) {
		logger.WithField("signal", s).Info("Shutting down")
	})

	psCtx, psCancel := context.WithCancel(context.Background())
	defer psCancel()

	checkFn := v.Check
	checkFn = validatorPersistProxy(persister, hitList, logger, checkFn)

	if conf.Server.PubSub.Enable {
		psSvc, err := setupPubSub(psCtx, conf, hitList, logger)
		if err != nil {
			logger.WithError(err).Fatal("Unable to set up pub/sub")
		}

		rt.RegisterCallback(func(_ os.Signal) {
			psCancel()
			deferClose(psSvc, logger)
		})

		checkFn = validatorNotifyProxy(psSvc, logger, checkFn)
	}

	checkFn = validatorCacheProxy(hitList, logger, checkFn)
	checkFn = validatorUpdateFinderProxy(myFinder, hitList, logger, checkFn)

	checkSvc := services.NewCheckService(hitList, myFinder, checkFn, logger)

	vc := conf.Server.Validator
	schema, err := NewGraphQLSchema(&checkSvc, vc.CheckMX, vc.CheckDomain)
	if err != nil {
		logger.WithError(err).Fatal("Unable to build the schema")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", NewHealthHandler(logger))
	mux.HandleFunc("/check", NewCheckHandler(logger, &checkSvc, conf.Client.InputLengthMax, vc.CheckMX, vc.CheckDomain))
	mux.HandleFunc("/extract", NewExtractHandler(logger, conf.Client.InputLengthMax))
	mux.Handle("/graphql", gqlhandler.New(&gqlhandler.Config{
		Schema:     &schema,
		Pretty:     conf.Server.GraphQL.PrettyOutput,
		GraphiQL:   conf.Server.GraphQL.GraphiQL,
		Playground: conf.Server.GraphQL.Playground,
	}))

	if conf.Server.Profiler.Enable {
		configureProfiler(mux, conf)
	}

	wrappers := []handlers.HandlerWrapper{
		handlers.WithRequestLogger(logger),
		handlers.WithGzipHandler(),
		handlers.WithHeaders(headersToHTTPHeaders(conf.Server.Headers)),
	}

	if conf.Server.PathStrip != "" {
		wrappers = append(wrappers, handlers.WithPathStrip(logger, conf.Server.PathStrip))
	}

	if conf.Server.RateLimiter.Rate > 0 && conf.Server.RateLimiter.Capacity > 0 {
		bucket := ratelimit.NewBucketWithRate(float64(conf.Server.RateLimiter.Rate), int64(conf.Server.RateLimiter.Capacity))
		wrappers = append(wrappers, handlers.NewRateLimitHandler(logger, bucket, conf.Server.RateLimiter.MaxDelay.AsDuration()))
	}

	if len(conf.Server.CORS.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: conf.Server.CORS.AllowedOrigins,
			AllowedHeaders: conf.Server.CORS.AllowedHeaders,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		})

		wrappers = append(wrappers, c.Handler)
	}

	lw := logger.WriterLevel(logger.Level)
	defer deferClose(lw, nil)

	s, err := mvhttp.BuildHTTPServer(mux, conf, logger, lw, wrappers...)
	if err != nil {
		logger.WithError(err).Fatal("Unable to build the server")
	}

	rt.RegisterCallback(func(_ os.Signal) {
		deferClose(persister, logger)
	})
	rt.RegisterCallback(func(_ os.Signal) {
		if err := s.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	})

	logger.WithFields(logrus.Fields{
		"listen_on": conf.Server.ListenOn,
	}).Info("Done, serving requests")

	err = s.Serve()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("HTTP server stopped %s", err)
		return
	}

	// Blocks until the cleanup callbacks ran
	rt.Wait()
}

// preload warms the hit list with previously persisted verdicts
func preload(hitList *cache.HitList, persister persist.Persister, logger logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	var now = time.Now()
	var loaded uint
	err := persister.Range(ctx, func(d cache.Domain, r cache.Recipient, vr validator.Result) error {
		hitList.AddInternalTypes(d, r, vr)
		loaded++
		return nil
	})

	if err != nil {
		logger.WithError(err).Warn("Unable to preload from the backend")
		return
	}

	logger.WithFields(logrus.Fields{
		"loaded":  loaded,
		"time_µs": time.Since(now).Microseconds(),
	}).Debug("Done loading from backend")
}

func setupPubSub(ctx context.Context, conf config.Config, hitList *cache.HitList, logger logrus.FieldLogger) (*gcp.PubSubSvc, error) {
	var opts []option.ClientOption
	if conf.Server.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Server.PubSub.CredentialsFile))
	}

	client, err := gcppubsub.NewClient(ctx, conf.Server.PubSub.Project, opts...)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	psSvc := gcp.NewPubSubSvc(
		logger,
		client,
		conf.Server.PubSub.Topic,
		gcp.WithSubscriptionLabels([]string{hostname, Version}),
		gcp.WithSubscriptionConcurrencyCount(2),
	)

	err = psSvc.Listen(ctx, func(ctx context.Context, notification pubsub.Notification) {
		if !notification.Data.ValidFormat {
			return
		}

		parts := types.EmailParts{
			Address: notification.Data.Local + `@` + notification.Data.Domain,
			Local:   notification.Data.Local,
			Domain:  notification.Data.Domain,
		}

		vr := validator.Result{
			Email:        parts.Address,
			ValidFormat:  notification.Data.ValidFormat,
			HasMX:        notification.Data.HasMX,
			DomainExists: notification.Data.DomainExists,
			Status:       notification.Data.Status,
		}

		if err := hitList.Add(parts, vr); err != nil {
			logger.WithError(err).Warn("Unable to apply notification")
		}
	})

	if err != nil {
		return nil, err
	}

	return psSvc, nil
}

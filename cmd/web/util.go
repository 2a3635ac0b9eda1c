package main

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/minio/highwayhash"
	"github.com/sirupsen/logrus"

	"github.com/mailvet/mailvet/cmd/web/config"
)

func headersToHTTPHeaders(conf config.Headers) http.Header {
	headers := http.Header{}
	for name, value := range conf {
		headers.Add(name, value)
	}

	return headers
}

func newLogger(conf config.Config) (*logrus.Logger, error) {
	var err error
	logger := logrus.New()

	if conf.Server.Log.Format == config.LFJSON {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{}
	}

	logger.Out = os.Stdout
	logger.Level, err = logrus.ParseLevel(conf.Server.Log.Level)

	return logger, err
}

// newHashAlgorithm derives the 256 bit key highwayhash needs from the configured secret
func newHashAlgorithm(key string) (hash.Hash, error) {
	if key == "" {
		return nil, fmt.Errorf("no hash key configured")
	}

	sum := sha256.Sum256([]byte(key))
	return highwayhash.New(sum[:])
}

func configureProfiler(mux *http.ServeMux, conf config.Config) {
	var prefix string
	if conf.Server.Profiler.Prefix != "" {
		prefix = conf.Server.Profiler.Prefix
	} else {
		prefix = "debug"
	}

	mux.HandleFunc(`/`+prefix+`/pprof/`, pprof.Index)
	mux.HandleFunc(`/`+prefix+`/pprof/cmdline`, pprof.Cmdline)
	mux.HandleFunc(`/`+prefix+`/pprof/profile`, pprof.Profile)
	mux.HandleFunc(`/`+prefix+`/pprof/symbol`, pprof.Symbol)
	mux.HandleFunc(`/`+prefix+`/pprof/trace`, pprof.Trace)
}

func deferClose(toClose io.Closer, log logrus.FieldLogger) {
	if toClose == nil {
		return
	}

	err := toClose.Close()
	if err != nil {
		if log == nil {
			fmt.Printf("error failed to close handle %s", err)
			return
		}

		log.WithError(err).Error("Failed to close handle")
	}
}

package mvhttp

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/mailvet/mailvet/cmd/web/config"
	"github.com/mailvet/mailvet/cmd/web/mvhttp/handlers"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

func BuildHTTPServer(mux http.Handler, conf config.Config, logger logrus.FieldLogger, logWriter io.Writer, wrappers ...handlers.HandlerWrapper) (*Server, error) {
	for _, h := range wrappers {
		mux = h(mux)
	}

	wTTL := 10 * time.Second
	if conf.Server.Profiler.Enable {
		wTTL = 31 * time.Second
	}

	server := &http.Server{
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       wTTL,
		WriteTimeout:      wTTL, // Is overridden, when the profiler is enabled.
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 19, // 512 kb
		Handler:           mux,
		Addr:              conf.Server.ListenOn,
		ErrorLog:          log.New(logWriter, "", 0),
	}

	listener, err := net.Listen("tcp", conf.Server.ListenOn)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error":     err,
			"listen_on": conf.Server.ListenOn,
		}).Error("Unable to start listener")

		return nil, err
	}

	if conf.Server.ConnectionLimit > 0 {
		listener = netutil.LimitListener(listener, int(conf.Server.ConnectionLimit))
	}

	server.RegisterOnShutdown(func() {
		err := listener.Close()
		logger.WithError(err).Debug("Closing listener")
	})

	return &Server{
		server:   server,
		listener: listener,
	}, nil
}

type Server struct {
	server   *http.Server
	listener net.Listener
}

func (s *Server) Serve() error {
	return s.server.Serve(s.listener)
}

// Shutdown drains in-flight requests, waiting up to 10 seconds before closing hard
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return s.server.Close()
	}

	return err
}

package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/internal/config"
	"github.com/swdunlop/portable-html-go/site"
	"github.com/swdunlop/portable-html-go/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP, or HTTPS when tls.domains is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := getConfig(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fetcher, closeFetcher, err := openFetcher(ctx, v)
			if err != nil {
				return err
			}
			defer closeFetcher()

			handler := site.New(fetcher,
				site.Sanitize(v.GetBool("render.sanitize")),
				site.Name(v.GetString("site.name")),
			)
			if domains := v.GetStringSlice("tls.domains"); len(domains) > 0 {
				servers, err := httpsServers(ctx, domains, v.GetString("tls.email"), handler)
				if err != nil {
					return err
				}
				return run(ctx, servers...)
			}
			return run(ctx, server{Server: newServer(v.GetString("http_addr"), handler)})
		},
	}
}

// openFetcher builds the content store client, backed by the snapshot cache unless snapshots.driver is empty.
func openFetcher(ctx context.Context, v *viper.Viper) (store.Fetcher, func(), error) {
	client, err := store.NewClient(config.Store(v))
	if err != nil {
		return nil, nil, err
	}
	driver := v.GetString("snapshots.driver")
	if driver == "" {
		return client, func() {}, nil
	}
	snapshots, err := store.OpenSnapshots(ctx, driver, v.GetString("snapshots.dsn"), client)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshots: %w", err)
	}
	hog.From(ctx).Info().Str("driver", driver).Msg("serving last good snapshots when the content store fails")
	return snapshots, func() {
		if err := snapshots.Close(); err != nil {
			hog.From(ctx).Warn().Err(err).Msg("could not close snapshots")
		}
	}, nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// httpsServers obtains certificates for domains and returns an HTTPS server for the site and an HTTP server that
// answers ACME challenges and redirects everything else to HTTPS.
func httpsServers(ctx context.Context, domains []string, email string, handler http.Handler) ([]server, error) {
	cm := certmagic.NewDefault()
	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:     certmagic.LetsEncryptProductionCA,
		Email:  email,
		Agreed: true,
	})
	cm.Issuers = []certmagic.Issuer{issuer}
	if err := cm.ManageSync(ctx, domains); err != nil {
		return nil, fmt.Errorf("obtain certificates for %v: %w", domains, err)
	}

	tlsConf := cm.TLSConfig()
	tlsConf.NextProtos = append([]string{"h2", "http/1.1"}, tlsConf.NextProtos...)
	tlsConf.MinVersion = tls.VersionTLS12

	secure := newServer(":443", handler)
	secure.TLSConfig = tlsConf
	plain := newServer(":80", issuer.HTTPChallengeHandler(http.HandlerFunc(redirectHTTPS)))
	return []server{
		{Server: secure, listen: func() error { return secure.ListenAndServeTLS("", "") }},
		{Server: plain},
	}, nil
}

func redirectHTTPS(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusMovedPermanently)
}

// server pairs an http.Server with the function that starts it; a nil listen uses ListenAndServe.
type server struct {
	*http.Server
	listen func() error
}

// run serves until ctx is done or a server fails, then shuts every server down gracefully.
func run(ctx context.Context, servers ...server) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			hog.From(ctx).Info().Str("addr", srv.Addr).Msg("listening")
			listen := srv.listen
			if listen == nil {
				listen = srv.ListenAndServe
			}
			if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %v: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				hog.From(ctx).Warn().Err(err).Str("addr", srv.Addr).Msg("graceful shutdown failed")
			}
		}
		return nil
	})
	return g.Wait()
}

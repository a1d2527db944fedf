package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/dashboard"
	"github.com/abhisek/learnhub/internal/handler"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/telemetry"
	"github.com/abhisek/learnhub/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "Listen address")
	f.String("jwt-secret", "", "HS256 secret for bearer tokens (required)")
	f.String("jwt-issuer", "learnhub", "Expected token issuer")
	f.String("redis-addr", "", "Redis address for the course content cache")
	f.Duration("course-cache-ttl", 0, "Course content cache TTL (0 disables)")
	f.String("trace", telemetry.ExporterNone, "Trace exporter: none, stdout or otlp")
	f.String("otlp-endpoint", "", "OTLP HTTP collector host:port")
	f.Bool("otlp-insecure", false, "Use plain HTTP for the OTLP collector")
	f.Float64("trace-sample", 0, "Trace sampling ratio (0 samples everything)")
	f.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, viperForCmd(cmd))
}

// serve runs the API until ctx is done. Tracing is flushed on every return
// path once it has been initialized.
func serve(ctx context.Context, v *viper.Viper) error {
	log := logging.Logger()

	issuer, err := auth.NewIssuer(v.GetString("jwt-secret"), v.GetString("jwt-issuer"))
	if err != nil {
		return fmt.Errorf("configure auth: %w", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Exporter:    v.GetString("trace"),
		Endpoint:    v.GetString("otlp-endpoint"),
		Insecure:    v.GetBool("otlp-insecure"),
		SampleRatio: v.GetFloat64("trace-sample"),
		ServiceName: "learnhub",
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.GetDuration("shutdown-timeout"))
		defer cancel()
		if err := shutdownTracing(fctx); err != nil {
			log.WithError(err).Warn("flush traces")
		}
	}()

	st, provider, err := openProvider(ctx, v)
	if err != nil {
		return err
	}

	gen, courseCache, err := newGenerator(ctx, v, provider)
	if err != nil {
		st.Close()
		return err
	}

	h := handler.New(handler.Deps{
		Generator: gen,
		Quizzes:   quiz.NewService(st.QuizResultRepo(), st.ActivityRepo()),
		Courses:   course.NewService(st.ProgressRepo(), st.ActivityRepo()),
		Tutor:     tutor.NewService(provider, st.ActivityRepo(), tutor.DefaultConfig()),
		Dashboard: dashboard.NewService(st.QuizResultRepo(), st.ProgressRepo(), st.ActivityRepo()),
		Issuer:    issuer,
	})

	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           handler.Routes(h, v.GetString("lang")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"addr":     srv.Addr,
		"provider": provider.ModelID(),
		"db":       st.Dialect(),
		"trace":    v.GetString("trace"),
	}).Info("starting server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.GetDuration("shutdown-timeout"))
		defer cancel()

		var errs []error
		if err := srv.Shutdown(sctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if courseCache != nil {
			if err := courseCache.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close cache: %w", err))
			}
		}
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/YuminosukeSato/bayesbench/datasets"
	"github.com/YuminosukeSato/bayesbench/internal/api/router"
	"github.com/YuminosukeSato/bayesbench/internal/config"
	"github.com/YuminosukeSato/bayesbench/internal/evaluation"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
	"github.com/YuminosukeSato/bayesbench/sklearn/naive_bayes"
)

func serveAction(c *cli.Context) error {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if _, err := log.Setup(cfg.Log.LoggerConfig(os.Stderr)); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("server")

	gin.SetMode(cfg.Server.Mode)

	// Startup phase: every dataset is trained before the server accepts requests.
	svc := evaluation.NewService(evaluation.WithModelOptions(modelOptions(cfg.Model)...))
	if err := svc.LoadAll(c.Context, sources(cfg)); err != nil {
		if !svc.Ready() {
			logger.Error("No dataset could be trained", err)
			return err
		}
		logger.Warn("Some datasets were skipped", err)
	}
	for _, s := range svc.Datasets() {
		logger.Info("Dataset ready",
			log.DatasetKey, s.Name,
			log.SamplesKey, s.Samples,
			log.AccuracyKey, s.Accuracy,
		)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: router.New(svc, router.Options{
			Logger:         log.GetLoggerWithName("api"),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
		return err
	}
	logger.Info("Server exited")
	return nil
}

func modelOptions(m config.ModelConfig) []naive_bayes.Option {
	var opts []naive_bayes.Option
	if m.VarSmoothing > 0 {
		opts = append(opts, naive_bayes.WithVarSmoothing(m.VarSmoothing))
	}
	if m.ParallelThreshold > 0 {
		opts = append(opts, naive_bayes.WithParallelThreshold(m.ParallelThreshold))
	}
	return opts
}

func sources(cfg *config.Config) []evaluation.Source {
	out := make([]evaluation.Source, 0, len(cfg.Datasets))
	for _, d := range cfg.Datasets {
		opts := datasets.DefaultCSVOptions()
		opts.Header = d.Header
		opts.LabelColumn = d.LabelColumn
		out = append(out, evaluation.Source{
			Name:    d.Name,
			Path:    d.ResolvePath(cfg.DataDir),
			Options: opts,
		})
	}
	return out
}

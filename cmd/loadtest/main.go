package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/gnuflag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cnpgdemo/internal/loadtest"
	"cnpgdemo/shared/constant"
	"cnpgdemo/shared/logger"
)

type flags struct {
	url            string
	requests       int
	concurrency    int
	rps            float64
	retries        int
	backoff        time.Duration
	maxBackoff     time.Duration
	timeout        time.Duration
	connectTimeout time.Duration
	readTimeout    time.Duration
	verbose        bool
}

func parseFlags(args []string) (flags, error) {
	var f flags

	fs := gnuflag.NewFlagSet("loadtest", gnuflag.ContinueOnError)
	fs.StringVar(&f.url, "url", "http://localhost:8000", "base URL of the API")
	fs.IntVar(&f.requests, "requests", 10000, "number of requests to perform")
	fs.IntVar(&f.concurrency, "concurrency", 100, "maximum requests in flight")
	fs.Float64Var(&f.rps, "rps", 0, "requests per second cap, 0 for unlimited")
	fs.IntVar(&f.retries, "retries", 3, "retries on 429 and transport errors")
	fs.DurationVar(&f.backoff, "backoff", 100*time.Millisecond, "initial retry backoff")
	fs.DurationVar(&f.maxBackoff, "max-backoff", 2*time.Second, "maximum retry backoff")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "total timeout per request")
	fs.DurationVar(&f.connectTimeout, "connect-timeout", 5*time.Second, "connect timeout")
	fs.DurationVar(&f.readTimeout, "read-timeout", 10*time.Second, "response header timeout")
	fs.BoolVar(&f.verbose, "v", false, "log every failed request")

	err := fs.Parse(true, args)

	return f, err
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger.InitLogger(constant.ServerEnvDevelopment)

	level := zerolog.InfoLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	client := loadtest.NewClient(f.url, loadtest.ClientOptions{
		Timeout:        f.timeout,
		ConnectTimeout: f.connectTimeout,
		ReadTimeout:    f.readTimeout,
		Retries:        f.retries,
		Backoff:        f.backoff,
		MaxBackoff:     f.maxBackoff,
	})
	defer client.Close()

	tester := loadtest.New(client, loadtest.Options{
		Requests:    f.requests,
		Concurrency: f.concurrency,
		RPS:         f.rps,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("url", f.url).Msg("Checking API health...")

	if err := tester.CheckHealth(ctx); err != nil {
		log.Error().Err(err).Msg("Please make sure the application is running.")
		stop()
		os.Exit(1)
	}

	report, err := tester.Run(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Load test interrupted")
	}

	if err := report.Write(os.Stdout); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
	}
}

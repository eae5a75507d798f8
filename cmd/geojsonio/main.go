package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tombowditch/geojsonio/browser"
	"github.com/tombowditch/geojsonio/geojsonio"
	"github.com/tombowditch/geojsonio/gist"
	"github.com/tombowditch/geojsonio/internal/config"
	"github.com/tombowditch/geojsonio/internal/health"
	"github.com/tombowditch/geojsonio/internal/metrics"
	"github.com/tombowditch/geojsonio/internal/ratelimit"
	"github.com/tombowditch/geojsonio/internal/server/httpserver"
	"github.com/tombowditch/geojsonio/internal/server/tcpserver"
)

const usage = `usage: geojsonio <command> [flags] [args]

commands:
  url [file]      print a geojson.io URL for file (or stdin)
  open [file]     same as url, and open it in the default browser
  resolve <url>   print the GeoJSON behind a geojson.io URL
  serve           run the HTTP and TCP front-ends
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "url":
		err = runURL(ctx, cfg, args, false)
	case "open":
		err = runURL(ctx, cfg, args, true)
	case "resolve":
		err = runResolve(ctx, cfg, args)
	case "serve":
		err = runServe(cfg, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("geojsonio failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newGistClient(cfg *config.Config) *gist.Client {
	opts := []gist.Option{gist.WithToken(cfg.GitHubToken), gist.WithTimeout(config.GistTimeout)}
	if cfg.GitHubAPIURL != "" {
		opts = append(opts, gist.WithBaseURL(cfg.GitHubAPIURL))
	}
	return gist.New(opts...)
}

func newBuilder(cfg *config.Config, extra ...geojsonio.Option) *geojsonio.Builder {
	opts := []geojsonio.Option{
		geojsonio.WithBaseDomain(cfg.BaseDomain),
		geojsonio.WithLogger(slog.Default()),
	}
	if cfg.GistEnabled() {
		opts = append(opts, geojsonio.WithStore(newGistClient(cfg)))
	} else {
		slog.Debug("GITHUB_TOKEN not set, gist storage disabled")
	}
	return geojsonio.New(append(opts, extra...)...)
}

func runURL(ctx context.Context, cfg *config.Config, args []string, open bool) error {
	name := "url"
	if open {
		name = "open"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	domain := fs.String("domain", "", "viewer URL (default $GEOJSONIO_DOMAIN or "+geojsonio.DefaultBaseDomain+")")
	noGist := fs.Bool("no-gist", false, "fail instead of creating a gist for large input")
	description := fs.String("description", geojsonio.DefaultDescription, "description of created gists")
	filename := fs.String("filename", geojsonio.DefaultFilename, "filename inside created gists")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	setupLogging(*verbose)

	contents, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	b := newBuilder(cfg,
		geojsonio.WithDescription(*description),
		geojsonio.WithFilename(*filename),
		geojsonio.WithOpener(browser.Open),
	)
	opts := geojsonio.BuildOptions{DisableRemoteStore: *noGist, BaseDomain: *domain}

	var u string
	if open {
		u, err = b.Open(ctx, contents, opts)
	} else {
		u, err = b.BuildReference(ctx, contents, opts)
	}
	if err != nil {
		return err
	}

	fmt.Println(u)
	return nil
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func runResolve(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if fs.NArg() != 1 {
		return errors.New("resolve takes exactly one URL")
	}

	ref, err := geojsonio.ParseReference(fs.Arg(0))
	if err != nil {
		return err
	}
	if ref.Kind == geojsonio.KindInline {
		fmt.Print(ref.Data)
		return nil
	}

	files, err := newGistClient(cfg).Get(ctx, ref.ID)
	if err != nil {
		return err
	}
	content, err := pickFile(files)
	if err != nil {
		return fmt.Errorf("gist %s: %w", ref.ID, err)
	}
	fmt.Print(content)
	return nil
}

// pickFile returns DefaultFilename if present, otherwise the only file.
func pickFile(files map[string]string) (string, error) {
	if c, ok := files[geojsonio.DefaultFilename]; ok {
		return c, nil
	}
	if len(files) == 1 {
		for _, c := range files {
			return c, nil
		}
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	return "", fmt.Errorf("cannot choose between files %v", names)
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	httpAddr := fs.String("http", cfg.HTTPAddr, "HTTP listen address")
	tcpAddr := fs.String("tcp", cfg.TCPAddr, "TCP listen address, empty to disable")
	noRedis := fs.Bool("no-redis", false, "run without Redis (no rate limiting)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	setupLogging(*verbose)

	m := metrics.New(prometheus.DefaultRegisterer)
	b := newBuilder(cfg, geojsonio.WithObserver(m))

	var (
		checker     health.Checker
		gistLimiter ratelimit.Limiter = ratelimit.Unlimited{}
		tcpLimiter  ratelimit.Limiter = ratelimit.Unlimited{}
	)
	if !*noRedis {
		rc, err := health.NewRedis(cfg.RedisURI, cfg.RedisPassword, config.RedisDB)
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}
		defer rc.Close()
		slog.Info("connected to redis")
		checker = rc

		// The rate limiter library opens its own Redis connection
		host, port := health.ParseRedisURI(cfg.RedisURI)
		if err := ratelimit.Setup(host, port, cfg.RedisPassword); err != nil {
			return fmt.Errorf("could not initialize rate limiter: %w", err)
		}
		gistLimiter = ratelimit.NewRedis("geojsonio_gist_rl_", config.GistCreateInterval, 1)
		tcpLimiter = ratelimit.NewRedis("geojsonio_tcp_rl_", config.TCPInterval, config.TCPBurst)
	}

	if *tcpAddr != "" {
		tcpSrv := tcpserver.New(b, tcpLimiter)
		go func() {
			if err := tcpSrv.Serve(*tcpAddr); err != nil {
				slog.Error("tcp server failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	slog.Info("starting http server", "addr", *httpAddr, "gist", cfg.GistEnabled())
	handler := httpserver.NewHandler(b, httpserver.Options{
		Limiter:    gistLimiter,
		Health:     checker,
		TrustProxy: cfg.TrustProxy,
	})
	return http.ListenAndServe(*httpAddr, handler)
}

// Command s3concurrent downloads an S3 prefix into a local folder, or uploads a
// local folder to an S3 prefix, with many concurrent transfers.
//
// Usage:
//
//	s3concurrent download ACCESS_KEY SECRET_KEY BUCKET [--prefix P] [--destination_folder D] [flags]
//	s3concurrent upload   ACCESS_KEY SECRET_KEY BUCKET [--prefix P] [--local_folder L] [flags]
//
// Pass "-" for ACCESS_KEY and SECRET_KEY to use the AWS default credential chain.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent"
	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3concurrent/s3types"
)

// Exit codes.
const (
	exitOK         = 0
	exitIncomplete = 1
	exitUsage      = 2
)

const usage = `usage:
  s3concurrent download ACCESS_KEY SECRET_KEY BUCKET [--prefix P] [--destination_folder D] [flags]
  s3concurrent upload   ACCESS_KEY SECRET_KEY BUCKET [--prefix P] [--local_folder L] [flags]

Pass "-" for ACCESS_KEY and SECRET_KEY to use the AWS default credential chain.
`

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	direction s3types.Direction

	accessKey string
	secretKey string
	bucket    string

	prefix         string
	folder         string
	threadCount    int
	maxRetry       int
	region         string
	endpoint       string
	pathStyle      bool
	backend        string
	partSize       int64
	reportInterval time.Duration
	include        stringList
	exclude        stringList
	logLevel       string
	logFormat      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n%s", err, usage)
		return exitUsage
	}

	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	client, err := s3concurrent.New(ctx, opts.bucket, opts.clientOptions(logger)...)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return exitCode(err)
	}

	var result *s3types.SyncResult
	switch opts.direction {
	case s3types.DirectionUpload:
		result, err = client.Upload(ctx, opts.folder, opts.prefix, opts.syncOptions()...)
	default:
		result, err = client.Download(ctx, opts.prefix, opts.folder, opts.syncOptions()...)
	}
	if err != nil {
		logger.Error("sync failed", "error", err)
		return exitCode(err)
	}
	if !result.Completed {
		logger.Error("sync interrupted", "run_id", result.RunID)
		return exitIncomplete
	}

	logger.Info("sync completed", "run_id", result.RunID)
	return exitOK
}

// exitCode maps a run error to an exit status. Rejected parameters are usage errors.
func exitCode(err error) int {
	if s3errors.IsInvalidInput(err) {
		return exitUsage
	}
	return exitIncomplete
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	if len(args) == 0 {
		return nil, errors.New("missing command")
	}

	opts := &options{direction: s3types.Direction(args[0])}
	fs := flag.NewFlagSet("s3concurrent "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch opts.direction {
	case s3types.DirectionDownload:
		fs.StringVar(&opts.folder, "destination_folder", ".", "local folder to download into")
	case s3types.DirectionUpload:
		fs.StringVar(&opts.folder, "local_folder", ".", "local folder to upload")
	default:
		return nil, fmt.Errorf("unknown command %q", args[0])
	}

	fs.StringVar(&opts.prefix, "prefix", "", "key prefix to sync; empty selects the whole bucket")
	fs.IntVar(&opts.threadCount, "thread_count", 10, "number of concurrent transfers")
	fs.IntVar(&opts.maxRetry, "max_retry", 10, "attempts per object before giving up")
	fs.StringVar(&opts.region, "region", "", "bucket region")
	fs.StringVar(&opts.endpoint, "endpoint", "", "custom S3 endpoint URL")
	fs.BoolVar(&opts.pathStyle, "path_style", false, "use path-style addressing")
	fs.StringVar(&opts.backend, "backend", string(s3types.BackendAWS), "object store client: aws or minio")
	fs.Int64Var(&opts.partSize, "part_size", s3concurrent.DefaultPartSize, "multipart part size in bytes")
	fs.DurationVar(&opts.reportInterval, "report_interval", 10*time.Second, "time between progress lines")
	fs.Var(&opts.include, "include", "only sync paths matching this glob (repeatable)")
	fs.Var(&opts.exclude, "exclude", "skip paths matching this glob (repeatable)")
	fs.StringVar(&opts.logLevel, "log_level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log_format", "text", "text or json")

	// Flags and positionals may be interleaved.
	var positional []string
	rest := args[1:]
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	if len(positional) != 3 {
		return nil, fmt.Errorf("expected ACCESS_KEY SECRET_KEY BUCKET, got %d positional arguments", len(positional))
	}
	opts.accessKey = credential(positional[0])
	opts.secretKey = credential(positional[1])
	opts.bucket = positional[2]

	if (opts.accessKey == "") != (opts.secretKey == "") {
		return nil, errors.New(`ACCESS_KEY and SECRET_KEY must both be given or both be "-"`)
	}
	if opts.backend != string(s3types.BackendAWS) && opts.backend != string(s3types.BackendMinio) {
		return nil, fmt.Errorf("unknown backend %q", opts.backend)
	}
	return opts, nil
}

func credential(arg string) string {
	if arg == "-" {
		return ""
	}
	return arg
}

func (o *options) clientOptions(logger *slog.Logger) []s3types.Option {
	opts := []s3types.Option{
		s3concurrent.WithBackend(s3types.Backend(o.backend)),
		s3concurrent.WithPartSize(o.partSize),
		s3concurrent.WithForcePathStyle(o.pathStyle),
		s3concurrent.WithLogger(logger),
	}
	if o.accessKey != "" {
		opts = append(opts, s3concurrent.WithCredentials(o.accessKey, o.secretKey))
	}
	if o.region != "" {
		opts = append(opts, s3concurrent.WithRegion(o.region))
	}
	if o.endpoint != "" {
		opts = append(opts, s3concurrent.WithEndpoint(o.endpoint))
	}
	return opts
}

func (o *options) syncOptions() []s3types.SyncOption {
	return []s3types.SyncOption{
		s3concurrent.WithThreadCount(o.threadCount),
		s3concurrent.WithMaxRetry(o.maxRetry),
		s3concurrent.WithReportInterval(o.reportInterval),
		s3concurrent.WithInclude(o.include...),
		s3concurrent.WithExclude(o.exclude...),
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/tldr-flow/internal/api"
	"github.com/nguyentantai21042004/tldr-flow/internal/completion"
	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/export"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/narrator"
	"github.com/nguyentantai21042004/tldr-flow/internal/processor"
	"github.com/nguyentantai21042004/tldr-flow/internal/source"
	"github.com/nguyentantai21042004/tldr-flow/internal/store"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcriber"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcript"
	"github.com/nguyentantai21042004/tldr-flow/internal/watcher"
	"github.com/nguyentantai21042004/tldr-flow/pkg/executor"
)

const usage = `Usage: tldr <command> [flags] [args]

Commands:
  run        [-config path] <url|media-file>   transcribe and summarize one input
  summarize  [-config path] [-target N] <file>  summarize a transcript file ("-" for stdin)
  watch      [-config path]                     summarize media dropped into paths.input
  serve      [-config path]                     serve the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "summarize":
		err = summarizeCmd(ctx, os.Args[2:])
	case "watch":
		err = watchCmd(ctx, os.Args[2:])
	case "serve":
		err = serveCmd(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	exec  executor.Executor
	store store.Store
	sum   summarizer.Summarizer
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Logging.Level)

	comp, err := completion.New(cfg.Completion, log)
	if err != nil {
		return nil, fmt.Errorf("create completer: %w", err)
	}

	sum := summarizer.New(comp, log, summarizer.Options{
		IncludeBoundaryUnit: cfg.Summarizer.IncludeBoundaryUnit,
		Concurrency:         cfg.Summarizer.Concurrency,
		Progress:            progressLogger(log),
	})

	return &app{
		cfg:   cfg,
		log:   log,
		exec:  executor.New(),
		store: store.New(cfg.Paths.Output),
		sum:   sum,
	}, nil
}

// progressLogger logs progress under the run context so lines keep their
// run id.
func progressLogger(log logger.Logger) summarizer.ProgressFunc {
	return func(ctx context.Context, p summarizer.Progress) {
		if p.Total > 0 {
			log.Info(ctx, "Progress [%s] %d/%d", p.Stage, p.Done, p.Total)
			return
		}
		log.Info(ctx, "Progress [%s] %s", p.Stage, p.Message)
	}
}

// processor wires the full media pipeline.
func (a *app) processor() (processor.Processor, error) {
	if err := a.cfg.RequireSecrets(); err != nil {
		return nil, err
	}
	if err := a.checkTools(); err != nil {
		return nil, err
	}

	trans, err := transcriber.New(a.cfg.Transcription, a.cfg.Completion.OpenAIKey, a.exec, a.log)
	if err != nil {
		return nil, fmt.Errorf("create transcriber: %w", err)
	}

	deps := processor.Deps{
		Executor:    a.exec,
		Store:       a.store,
		Fetcher:     source.New(a.cfg.Download.YtDlpPath, a.store, a.exec, a.log),
		Transcriber: trans,
		Summarizer:  a.sum,
		Exporter:    export.New(),
		Logger:      a.log,
	}
	if a.cfg.Narration.Enabled {
		deps.Narrator = narrator.New(a.cfg.Narration, "", a.cfg.Completion.Timeout)
	}
	return processor.New(a.cfg, deps), nil
}

// checkTools fails early when ffmpeg is missing. yt-dlp is only needed for
// URLs so its absence is a warning.
func (a *app) checkTools() error {
	ctx := context.Background()
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := a.exec.LookPath(tool); err != nil {
			return err
		}
	}
	if _, err := a.exec.LookPath(a.cfg.Download.YtDlpPath); err != nil {
		a.log.Warn(ctx, "yt-dlp unavailable, URL inputs will fail: %v", err)
	}
	return nil
}

func (a *app) banner(ctx context.Context, title string) {
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "%s", title)
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	a.log.Info(ctx, "Completion: %s (%s)", a.cfg.Completion.Provider, a.cfg.Completion.Model)
	a.log.Info(ctx, "Transcription: %s", a.cfg.Transcription.Provider)
	a.log.Info(ctx, "Target tokens per chunk: %d", a.cfg.Summarizer.TargetTokens)
	a.log.Info(ctx, "Output: %s", a.cfg.Paths.Output)
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("run needs exactly one url or media file")
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	proc, err := a.processor()
	if err != nil {
		return err
	}

	ctx = logger.WithRunID(ctx, "")
	a.banner(ctx, "tldr run")

	res, err := proc.Process(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(res.Summary)
	return nil
}

func summarizeCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	target := fs.Int("target", 0, "token budget per chunk (default from config)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("summarize needs exactly one transcript file")
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	if err := a.cfg.RequireCompletionSecrets(); err != nil {
		return err
	}

	text, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	if *target <= 0 {
		*target = a.cfg.Summarizer.TargetTokens
	}

	res, err := a.sum.Run(logger.WithRunID(ctx, ""), summarizer.Request{
		Text:          text,
		TargetTokens:  *target,
		MaxUnitTokens: a.cfg.Summarizer.MaxUnitTokens,
		Counter:       transcript.CounterByName(a.cfg.Summarizer.Tokenizer),
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Summary)
	return nil
}

func watchCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	proc, err := a.processor()
	if err != nil {
		return err
	}

	for _, dir := range []string{a.cfg.Paths.Input, a.cfg.Paths.Output, a.cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	w, err := watcher.New(a.cfg.Paths.Input, proc.Handle, a.log, a.cfg.Performance.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	a.banner(ctx, "tldr watch")
	a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
	a.log.Info(ctx, "Press Ctrl+C to stop")

	err = w.Start(ctx)
	a.log.Info(context.Background(), "tldr watch stopped")
	return err
}

func serveCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	if err := a.cfg.RequireCompletionSecrets(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.NewServer(a.sum, a.store, a.cfg.Summarizer, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.banner(ctx, "tldr serve")
	a.log.Info(ctx, "Listening on %s", a.cfg.Server.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info(context.Background(), "Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

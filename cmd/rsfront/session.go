package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rsfront/internal/driver"
	"rsfront/internal/layout"
	"rsfront/internal/prof"
	"rsfront/internal/project"
	"rsfront/internal/trace"
)

// session is the state shared by all commands of one invocation: the
// merged configuration and the tracer.
type session struct {
	cfg       project.Config
	color     bool
	timings   bool
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
	span      *trace.Span
	profile   *prof.Session
}

func (s *session) open(cmd *cobra.Command) error {
	if err := s.loadConfig(cmd); err != nil {
		return err
	}
	if err := s.applyFlags(cmd); err != nil {
		return err
	}
	if err := s.setupTracing(cmd); err != nil {
		return err
	}
	return s.startProfiling(cmd)
}

func (s *session) startProfiling(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	s.profile, err = prof.Start(opts)
	return err
}

func (s *session) loadConfig(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		s.cfg, err = project.LoadConfig(path)
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	s.cfg, _, err = project.LoadFrom(wd)
	return err
}

// applyFlags overrides config values with explicitly set flags.
func (s *session) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("max-diagnostics") {
		n, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		s.cfg.Limits.MaxDiagnostics = n
	}
	if flags.Changed("pointer-size") {
		n, err := flags.GetInt("pointer-size")
		if err != nil {
			return fmt.Errorf("failed to get pointer-size flag: %w", err)
		}
		if _, err := layout.TargetForPointerSize(n); err != nil {
			return err
		}
		s.cfg.Target.PointerSize = n
		s.cfg.Target.Triple = ""
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	colorMode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorMode {
	case "auto":
		s.color = isTerminal(cmd.OutOrStdout()) && os.Getenv("NO_COLOR") == ""
	case "on":
		s.color = true
	case "off":
		s.color = false
	default:
		return fmt.Errorf("unknown color mode: %s", colorMode)
	}

	s.timings, err = flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	return nil
}

// setupTracing merges the trace flags with [trace] and attaches the tracer
// to the command context.
func (s *session) setupTracing(cmd *cobra.Command) error {
	flags := cmd.Flags()
	output, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	heartbeat, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if levelStr == "" {
		levelStr = s.cfg.Trace.Level
		// --trace без уровня включает фазы
		if output != "" && (levelStr == "" || levelStr == "off") {
			levelStr = "phase"
		}
	}
	if output == "" {
		output = s.cfg.Trace.Output
	}
	if formatStr == "" {
		formatStr = s.cfg.Trace.Format
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	cfg := trace.Config{Level: level, Mode: mode, Format: format, OutputPath: output}
	if output == "-" || output == "" {
		// обёртка прячет Close, чтобы трасса не закрывала stderr
		cfg.Output = struct{ io.Writer }{cmd.ErrOrStderr()}
	}
	s.tracer, err = trace.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	s.heartbeat = trace.StartHeartbeat(s.tracer, heartbeat)
	s.span = trace.Begin(s.tracer, trace.ScopeDriver, "rsfront "+cmd.Name(), 0)

	ctx := trace.WithTracer(cmd.Context(), s.tracer)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: s.span.ID()})
	cmd.SetContext(ctx)
	return nil
}

func (s *session) close(stderr io.Writer) {
	if err := s.profile.Stop(); err != nil {
		fmt.Fprintf(stderr, "profile: %v\n", err)
	}
	if s.tracer == nil {
		return
	}
	s.span.End("")
	s.heartbeat.Stop()
	if err := s.tracer.Flush(); err != nil {
		fmt.Fprintf(stderr, "trace: flush error: %v\n", err)
	}
	if err := s.tracer.Close(); err != nil {
		fmt.Fprintf(stderr, "trace: close error: %v\n", err)
	}
}

// compileOptions maps the session onto driver options.
func (s *session) compileOptions() driver.Options {
	opts := driver.OptionsFromConfig(s.cfg)
	opts.EnableTimings = s.timings
	return opts
}

// cacheDir resolves [cache].dir against the directory of rsfront.toml.
func (s *session) cacheDir() string {
	dir := s.cfg.Cache.Dir
	if dir == "" || filepath.IsAbs(dir) || s.cfg.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(s.cfg.Path), dir)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-spooler/pkg/logger"
	"github.com/huynhanx03/go-spooler/pkg/settings"
	"github.com/huynhanx03/go-spooler/pkg/spool"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks failures caused by the command line or configuration.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// execute runs the command line and returns the process exit status.
func execute(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCmd(settings.NewViper())
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "spooler:", err)
	var usage usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(stderr, cmd.UseLine())
		return exitUsage
	}
	return exitFailure
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"backend":          "spooler.backend",
	"capacity":         "spooler.capacity",
	"requests":         "spooler.requests_per_client",
	"min-file-size":    "spooler.min_file_size",
	"max-file-size":    "spooler.max_file_size",
	"min-pace":         "spooler.min_pace",
	"max-pace":         "spooler.max_pace",
	"units-per-second": "spooler.units_per_second",
	"drain":            "spooler.drain",
	"shutdown-timeout": "spooler.shutdown_timeout",
	"mq-name":          "spooler.mqueue.name",
	"mq-msgsize":       "spooler.mqueue.max_message_size",
	"mq-poll":          "spooler.mqueue.poll_interval",
	"log-level":        "logger.log_level",
	"log-file":         "logger.file_log_name",
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "spooler <clients> <printers>",
		Short: "Run print clients and printers around a bounded print queue",
		Long: `spooler starts <clients> print clients, each submitting a fixed number of
print jobs, and <printers> printers that print them in arrival order.
The queue between them is a ring buffer (memory), a Go channel (chan) or a
POSIX message queue (mqueue). Settings come from flags, SPOOLER_* environment
variables and an optional config file.`,
		Args:          actorCounts,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
			}
			// Already validated by actorCounts.
			clients, _ := strconv.Atoi(args[0])
			printers, _ := strconv.Atoi(args[1])
			v.Set("spooler.clients", clients)
			v.Set("spooler.printers", printers)

			cfg, err := settings.Load(v)
			if err != nil {
				return usageError{err}
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("backend", v.GetString("spooler.backend"), "queue backend: memory, chan or mqueue")
	flags.Int("capacity", v.GetInt("spooler.capacity"), "queue capacity")
	flags.Int("requests", v.GetInt("spooler.requests_per_client"), "print jobs per client")
	flags.Int("min-file-size", v.GetInt("spooler.min_file_size"), "smallest file, in characters")
	flags.Int("max-file-size", v.GetInt("spooler.max_file_size"), "largest file, in characters")
	flags.Duration("min-pace", v.GetDuration("spooler.min_pace"), "shortest pause between two jobs of a client")
	flags.Duration("max-pace", v.GetDuration("spooler.max_pace"), "longest pause between two jobs of a client")
	flags.Int("units-per-second", v.GetInt("spooler.units_per_second"), "characters a printer prints per second")
	flags.Bool("drain", v.GetBool("spooler.drain"), "print every queued job before stopping the printers")
	flags.Duration("shutdown-timeout", v.GetDuration("spooler.shutdown_timeout"), "longest time to wait for the queue to drain")
	flags.String("mq-name", v.GetString("spooler.mqueue.name"), "POSIX queue name (default: unique per run)")
	flags.Int("mq-msgsize", v.GetInt("spooler.mqueue.max_message_size"), "POSIX queue message size in bytes")
	flags.Duration("mq-poll", v.GetDuration("spooler.mqueue.poll_interval"), "POSIX queue cancellation check interval")
	flags.String("log-level", v.GetString("logger.log_level"), "debug, info, warn or error")
	flags.String("log-file", v.GetString("logger.file_log_name"), "write JSON logs to this rotated file")

	flags.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})

	return cmd
}

// actorCounts accepts exactly two positive integers.
func actorCounts(_ *cobra.Command, args []string) error {
	if len(args) != 2 {
		return usageError{errors.Errorf("expected <clients> <printers>, got %d arguments", len(args))}
	}
	for i, name := range []string{"clients", "printers"} {
		n, err := strconv.Atoi(args[i])
		if err != nil || n < 1 {
			return usageError{errors.Errorf("%s must be a positive integer, got %q", name, args[i])}
		}
	}
	return nil
}

func run(ctx context.Context, cfg *settings.Config) error {
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return usageError{err}
	}
	atexit.Register(func() { _ = log.Sync() })
	defer func() { _ = log.Sync() }()

	ch, err := spool.Open(cfg.Spooler)
	if err != nil {
		log.Error("failed to create print queue", zap.String("backend", cfg.Spooler.Backend), zap.Error(err))
		return err
	}
	closeQueue := func() {
		if err := ch.Close(); err != nil {
			log.Error("failed to close print queue", zap.Error(err))
		}
	}
	atexit.Register(closeQueue)
	defer closeQueue()

	fields := []zap.Field{
		zap.String("backend", cfg.Spooler.Backend),
		zap.Int("capacity", ch.Cap()),
	}
	if kc, ok := ch.(*spool.KernelChannel); ok {
		attr, err := kc.Attr()
		if err != nil {
			log.Error("failed to read queue attributes", zap.Error(err))
			return err
		}
		fields = append(fields,
			zap.String("name", kc.Name()),
			zap.Int("max_messages", attr.MaxMsg),
			zap.Int("message_size", attr.MsgSize),
		)
	}
	log.Info("print queue ready", fields...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sp := cfg.Spooler
	coord := &spool.Coordinator{
		Channel:  ch,
		Clients:  sp.Clients,
		Printers: sp.Printers,
		ProducerOptions: []spool.ProducerOption{
			spool.WithRequests(sp.RequestsPerClient),
			spool.WithWorkload(spool.Workload{MinSize: sp.MinFileSize, MaxSize: sp.MaxFileSize}),
			spool.WithPace(sp.MinPace, sp.MaxPace),
		},
		ConsumerOptions: []spool.ConsumerOption{
			spool.WithUnitsPerSecond(sp.UnitsPerSecond),
		},
		Drain:           sp.Drain,
		ShutdownTimeout: sp.ShutdownTimeout,
		Logger:          log,
	}

	summary, err := coord.Run(ctx)
	if err != nil {
		log.Error("spooler failed", zap.Error(err))
		return err
	}
	if summary.Pending > 0 {
		log.Warn("print jobs left unprinted", zap.Int("pending", summary.Pending))
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/harrison/pbar/internal/config"
	"github.com/harrison/pbar/internal/logger"
)

// setupLogging builds the process logger from configuration: a console
// handler on errOut and, when enabled, a per-run file handler. The logger
// becomes logger.Default() and also receives output from the standard
// library logger and logrus. The returned function closes the file handler
// and restores the previous default logger.
func setupLogging(cfg config.LogConfig, errOut io.Writer) (*logger.Logger, func(), error) {
	level, _ := logger.ParseLevel(cfg.Level)

	formatter, err := logger.NewTextFormatter(cfg.Layout)
	if err != nil {
		return nil, nil, err
	}

	console := logger.NewConsoleHandler(errOut, cfg.Level)
	if tf, ok := console.Formatter().(*logger.TextFormatter); ok {
		console.SetFormatter(formatter.WithColor(tf.Color()))
	}

	l := logger.New("pbar", level, console)

	var file *logger.FileHandler
	if cfg.File {
		file, err = logger.NewFileHandler(cfg.Dir, logger.FileOptions{
			Level:      cfg.Level,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open run log: %w", err)
		}
		file.SetFormatter(formatter)
		if err := l.AddHandler(file); err != nil {
			file.Close()
			return nil, nil, err
		}
	}

	previous := logger.SetDefault(l)
	prevStdOut, prevStdFlags := log.Writer(), log.Flags()
	log.SetOutput(l.Writer(logger.LevelInfo))
	log.SetFlags(0)
	std := logrus.StandardLogger()
	prevLogrusOut, prevHooks := std.Out, copyHooks(std.Hooks)
	logger.BridgeLogrus(std, l)

	cleanup := func() {
		std.ReplaceHooks(prevHooks)
		std.SetOutput(prevLogrusOut)
		log.SetOutput(prevStdOut)
		log.SetFlags(prevStdFlags)
		logger.SetDefault(previous)
		if file != nil {
			file.Close()
		}
	}
	return l, cleanup, nil
}

func copyHooks(hooks logrus.LevelHooks) logrus.LevelHooks {
	out := make(logrus.LevelHooks, len(hooks))
	for level, hs := range hooks {
		out[level] = append([]logrus.Hook(nil), hs...)
	}
	return out
}

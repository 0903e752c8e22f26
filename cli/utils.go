package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.viam.com/calibeval/logging"
)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// newLogger returns a logger writing to the app's error writer, at debug level when --debug is set.
// With --log-file the same entries also go to a size-rotated file. The returned function flushes the
// logger and closes the file; actions defer it.
func newLogger(c *cli.Context) (logging.Logger, func() error) {
	logger := logging.NewBlankLogger(c.App.Name)
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	var file *lumberjack.Logger
	if path := c.String(flagLogFile); path != "" {
		file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    64,
			MaxBackups: 2,
		}
		logger.AddAppender(logging.NewWriterAppender(file))
	}
	if !c.Bool(flagDebug) {
		logger.SetLevel(logging.INFO)
	}
	return logger, func() error {
		err := logger.Sync()
		if file != nil {
			err = multierr.Combine(err, file.Close())
		}
		return err
	}
}

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmadmin/common"
)

// Log is the global logger instance. It starts as an info-level console
// logger and is replaced by InitGlobalLogger.
var Log *XMLog

// XMLog wraps *logrus.Logger with host-scoped helpers.
type XMLog struct {
	*logrus.Logger
}

var defaultFieldsOrder = []string{common.HostName, common.SessionName, common.CommandName}

func init() {
	Log = &XMLog{Logger: newConsoleLogger(os.Stderr, logrus.InfoLevel, false)}
}

func newConsoleLogger(out io.Writer, level logrus.Level, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetOutput(out)

	// Plain runs print bare messages; verbose runs add time and level.
	displayLevel := ShowAboveWarn
	if verbose {
		displayLevel = ShowAll
	}
	l.SetFormatter(&Formatter{
		TimestampFormat:        "15:04:05",
		DisableTimestamp:       !verbose,
		DisplayLevelName:       displayLevel,
		DisableCaller:          true,
		FieldsDisplayWithOrder: defaultFieldsOrder,
	})
	return l
}

// InitGlobalLogger replaces Log. Console output goes to stderr so that
// command results printed on stdout stay machine-readable. When outputPath
// is set, every enabled level is also written to a daily-rotated
// <outputPath>/xmadmin.log.
func InitGlobalLogger(outputPath string, verbose bool, level logrus.Level) error {
	if verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	l := newConsoleLogger(os.Stderr, level, verbose)

	if outputPath != "" {
		if err := os.MkdirAll(outputPath, 0755); err != nil {
			return errors.Wrapf(err, "failed to create log output directory %s", outputPath)
		}
		logFilePath := filepath.Join(outputPath, common.AppName+".log")

		writer, err := rotatelogs.New(
			logFilePath+".%Y%m%d",
			rotatelogs.WithLinkName(logFilePath),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return errors.Wrapf(err, "failed to initialize rotatelogs for %s", logFilePath)
		}

		l.SetReportCaller(true)
		fileFormatter := &Formatter{
			TimestampFormat:        "2006-01-02 15:04:05.000 MST",
			NoColors:               true,
			DisplayLevelName:       ShowAll,
			FieldsDisplayWithOrder: defaultFieldsOrder,
			CustomCallerFormatter: func(frame *runtime.Frame) string {
				return fmt.Sprintf("[%s:%d]", filepath.Base(frame.File), frame.Line)
			},
		}

		writers := lfshook.WriterMap{}
		for _, lvl := range logrus.AllLevels {
			if l.IsLevelEnabled(lvl) {
				writers[lvl] = writer
			}
		}
		// Callers are reported for the file only; the console formatter drops them.
		l.AddHook(lfshook.NewHook(writers, fileFormatter))
	}

	Log = &XMLog{Logger: l}
	return nil
}

// ForHost returns an entry tagged with the host name.
func (xl *XMLog) ForHost(hostName string) *logrus.Entry {
	return xl.WithField(common.HostName, hostName)
}

func (xl *XMLog) DebugfNode(nodeName string, format string, args ...interface{}) {
	xl.ForHost(nodeName).Debugf(format, args...)
}

func (xl *XMLog) InfofNode(nodeName string, format string, args ...interface{}) {
	xl.ForHost(nodeName).Infof(format, args...)
}

func (xl *XMLog) WarnfNode(nodeName string, format string, args ...interface{}) {
	xl.ForHost(nodeName).Warnf(format, args...)
}

// ErrorfNode logs at error level and attaches err under the "error" field.
func (xl *XMLog) ErrorfNode(nodeName string, err error, format string, args ...interface{}) {
	entry := xl.ForHost(nodeName)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Errorf(format, args...)
}

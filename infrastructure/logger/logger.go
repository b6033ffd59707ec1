package logger

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Logger is a subsystem logger. All messages are routed through the package
// backend; a Logger only decides whether a message passes its own level.
type Logger struct {
	level        uint32 // Level, used atomically
	subsystemTag string
	backend      *Backend
	writeChan    chan<- logEntry
}

var (
	backend = NewBackend()

	subsystemsMutex sync.Mutex
	subsystems      = make(map[string]*Logger)
)

// RegisterSubSystem returns a logger for the given subsystem tag, creating it
// if it does not exist yet. Packages call this from their log.go at init time.
func RegisterSubSystem(subsystemTag string) *Logger {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	logger, ok := subsystems[subsystemTag]
	if !ok {
		logger = &Logger{
			level:        uint32(LevelInfo),
			subsystemTag: subsystemTag,
			backend:      backend,
			writeChan:    backend.writeChan,
		}
		subsystems[subsystemTag] = logger
	}
	return logger
}

// InitLog attaches the log file and error log file to the backend and starts
// it. It must be called before the first log line is written; subsequent calls
// return an error.
func InitLog(logFile, errLogFile string) error {
	err := backend.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		return errors.Wrap(err, "error adding stdout to the logger")
	}
	if logFile != "" {
		err := backend.AddLogFile(logFile, LevelTrace)
		if err != nil {
			return errors.Wrapf(err, "error adding log file %s to the logger", logFile)
		}
	}
	if errLogFile != "" {
		err := backend.AddLogFile(errLogFile, LevelWarn)
		if err != nil {
			return errors.Wrapf(err, "error adding error log file %s to the logger", errLogFile)
		}
	}
	return backend.Run()
}

// SetLogLevels sets the log level for all registered subsystems.
func SetLogLevels(level Level) {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	for _, logger := range subsystems {
		logger.SetLevel(level)
	}
}

// Close shuts the backend down after all pending writes are flushed.
func Close() {
	backend.Close()
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

func (l *Logger) print(level Level, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.write(level, fmt.Sprintln(args...))
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.write(level, fmt.Sprintf(format, args...)+"\n")
}

func (l *Logger) write(level Level, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("%s [%s] %s: %s", timestamp, level, l.subsystemTag, message)
	if !l.backend.IsRunning() {
		// Fall back to stderr so early or post-shutdown messages are
		// not lost silently.
		_, _ = fmt.Fprint(os.Stderr, line)
		return
	}
	l.writeChan <- logEntry{log: []byte(line), level: level}
}

// Tracef formats a message according to a format specifier and writes it with
// LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.printf(LevelTrace, format, args...)
}

// Debugf formats a message according to a format specifier and writes it with
// LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

// Infof formats a message according to a format specifier and writes it with
// LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

// Warnf formats a message according to a format specifier and writes it with
// LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

// Errorf formats a message according to a format specifier and writes it with
// LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

// Criticalf formats a message according to a format specifier and writes it
// with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

// Trace writes a message with LevelTrace.
func (l *Logger) Trace(args ...interface{}) { l.print(LevelTrace, args...) }

// Debug writes a message with LevelDebug.
func (l *Logger) Debug(args ...interface{}) { l.print(LevelDebug, args...) }

// Info writes a message with LevelInfo.
func (l *Logger) Info(args ...interface{}) { l.print(LevelInfo, args...) }

// Warn writes a message with LevelWarn.
func (l *Logger) Warn(args ...interface{}) { l.print(LevelWarn, args...) }

// Error writes a message with LevelError.
func (l *Logger) Error(args ...interface{}) { l.print(LevelError, args...) }

// Critical writes a message with LevelCritical.
func (l *Logger) Critical(args ...interface{}) { l.print(LevelCritical, args...) }

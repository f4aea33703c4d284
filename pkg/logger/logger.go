package logger

import (
	"fmt"
	"log"
	"os"
	"time"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[37m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Log levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSuccess
)

// Logger is a colored, leveled console logger. The zero value is not
// usable; construct one with New. A nil *Logger is safe to call methods
// on and discards everything, so components deep in pkg/tcp can hold an
// optional logger without forcing console output on library callers.
type Logger struct {
	level      int
	timeFormat string
	showTime   bool
}

// New creates a Logger at the given level with timestamps enabled.
func New(level int) *Logger {
	return &Logger{
		level:      level,
		timeFormat: "15:04:05",
		showTime:   true,
	}
}

func (l *Logger) SetLevel(level int) {
	if l == nil {
		return
	}
	l.level = level
}

func (l *Logger) SetTimeFormat(format string) {
	if l == nil {
		return
	}
	l.timeFormat = format
}

func (l *Logger) ShowTime(show bool) {
	if l == nil {
		return
	}
	l.showTime = show
}

// formatMessage formats a log message with color and timestamp
func (l *Logger) formatMessage(color, prefix, message string) string {
	timestamp := ""
	if l.showTime {
		timestamp = fmt.Sprintf("%s[%s]%s ", ColorGray, time.Now().Format(l.timeFormat), ColorReset)
	}
	return fmt.Sprintf("%s%s[%s]%s %s", timestamp, color, prefix, ColorReset, message)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || l.level > LevelDebug {
		return
	}
	log.Println(l.formatMessage(ColorGray, "DEBUG", fmt.Sprintf(format, args...)))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil || l.level > LevelInfo {
		return
	}
	log.Println(l.formatMessage(ColorWhite, "INFO", fmt.Sprintf(format, args...)))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil || l.level > LevelWarn {
		return
	}
	log.Println(l.formatMessage(ColorYellow, "WARN", fmt.Sprintf(format, args...)))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l == nil || l.level > LevelError {
		return
	}
	log.Println(l.formatMessage(ColorRed, "ERROR", fmt.Sprintf(format, args...)))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	if l == nil || l.level > LevelSuccess {
		return
	}
	log.Println(l.formatMessage(ColorGreen, "SUCCESS", fmt.Sprintf(format, args...)))
}

// defaultLogger backs the package-level convenience functions used by cmd/tcpd.
var defaultLogger = New(LevelInfo)

// SetLevel sets the minimum log level of the package-level logger.
func SetLevel(level int) { defaultLogger.SetLevel(level) }

// SetTimeFormat sets the time format of the package-level logger.
func SetTimeFormat(format string) { defaultLogger.SetTimeFormat(format) }

// ShowTime enables or disables timestamps on the package-level logger.
func ShowTime(show bool) { defaultLogger.ShowTime(show) }

func Debug(format string, args ...interface{})   { defaultLogger.Debugf(format, args...) }
func Info(format string, args ...interface{})    { defaultLogger.Infof(format, args...) }
func Warn(format string, args ...interface{})    { defaultLogger.Warnf(format, args...) }
func Error(format string, args ...interface{})   { defaultLogger.Errorf(format, args...) }
func Success(format string, args ...interface{}) { defaultLogger.Successf(format, args...) }

// Fatal logs a fatal error and exits.
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Println(defaultLogger.formatMessage(ColorRed, "FATAL", msg))
	os.Exit(1)
}

// Section prints a boxed section header to standard output.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application banner on startup.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║    ██████╗  ██████╗ ████████╗ ██████╗██████╗             ║
║   ██╔════╝ ██╔═══██╗╚══██╔══╝██╔════╝██╔══██╗            ║
║   ██║  ███╗██║   ██║   ██║   ██║     ██████╔╝            ║
║   ██║   ██║██║   ██║   ██║   ██║     ██╔═══╝             ║
║   ╚██████╔╝╚██████╔╝   ██║   ╚██████╗██║                 ║
║    ╚═════╝  ╚═════╝    ╚═╝    ╚═════╝╚═╝                 ║
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}

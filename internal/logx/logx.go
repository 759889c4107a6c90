// Package logx contains the apex/log handler used by the commands.
package logx

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// levelColors maps each level to its color.
var levelColors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// levelEmoji maps each level to the emoji used when Emoji is true.
var levelEmoji = [...]string{
	log.DebugLevel: "🧐",
	log.InfoLevel:  "🙂",
	log.WarnLevel:  "🔥",
	log.ErrorLevel: "💥",
	log.FatalLevel: "💀",
}

// Handler implements log.Handler. Each line is prefixed by the number
// of seconds elapsed since StartTime.
type Handler struct {
	// Emoji OPTIONALLY uses emojis instead of level names.
	Emoji bool

	// StartTime is the MANDATORY zero of the elapsed-time prefix.
	StartTime time.Time

	// Writer is the MANDATORY writer.
	Writer io.Writer

	// colors is true when we should colorize the output.
	colors bool

	// mu serializes writes.
	mu sync.Mutex
}

var _ log.Handler = &Handler{}

// NewHandlerWithDefaultSettings returns a [*Handler] writing on the
// standard error, with colors when the standard error is a terminal.
func NewHandlerWithDefaultSettings() *Handler {
	return NewHandler(os.Stderr)
}

// NewHandler returns a [*Handler] writing on w. Colors are only enabled
// when w is an *os.File attached to a terminal.
func NewHandler(w io.Writer) *Handler {
	h := &Handler{
		StartTime: time.Now(),
		Writer:    w,
	}
	if f, ok := w.(*os.File); ok && !color.NoColor {
		h.Writer = colorable.NewColorable(f)
		h.colors = true
	}
	return h
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%14.6f] %s %s", time.Since(h.StartTime).Seconds(), h.level(e.Level), e.Message)
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%v", name, e.Fields[name])
	}
	sb.WriteString("\n")
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.Writer, sb.String())
	return err
}

// level returns the printable level.
func (h *Handler) level(level log.Level) string {
	if h.Emoji && int(level) >= 0 && int(level) < len(levelEmoji) {
		return levelEmoji[level]
	}
	s := fmt.Sprintf("<%s>", level)
	if h.colors && int(level) >= 0 && int(level) < len(levelColors) {
		return levelColors[level].Sprint(s)
	}
	return s
}

// NewLogger returns an apex/log logger using handler, at debug level when
// verbose is true and at info level otherwise.
func NewLogger(handler log.Handler, verbose bool) *log.Logger {
	logger := &log.Logger{Level: log.InfoLevel, Handler: handler}
	if verbose {
		logger.Level = log.DebugLevel
	}
	return logger
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatter for the Kyra Fuzzer. Renders colored,
single-line entries with an event prefix derived from the message and
deterministic key-sorted structured fields.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders fuzzer log entries as single colored lines
type CustomFormatter struct {
	Timestamp bool
	Colors    bool
}

// Format renders one log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var out strings.Builder

	if f.Timestamp {
		ts := entry.Time.Format("2006-01-02 15:04:05.000")
		if f.Colors {
			fmt.Fprintf(&out, "\033[36m%s\033[0m ", ts)
		} else {
			fmt.Fprintf(&out, "%s ", ts)
		}
	}

	level := strings.ToUpper(entry.Level.String())
	if f.Colors {
		fmt.Fprintf(&out, "\033[%dm%s\033[0m ", f.levelColor(entry.Level), level)
	} else {
		fmt.Fprintf(&out, "%s ", level)
	}

	if prefix := eventPrefix(entry.Message); prefix != "" {
		if f.Colors {
			fmt.Fprintf(&out, "\033[35m[%s]\033[0m ", prefix)
		} else {
			fmt.Fprintf(&out, "[%s] ", prefix)
		}
	}

	out.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		out.WriteString(" ")
		out.WriteString(f.formatFields(entry.Data))
	}

	out.WriteString("\n")
	return []byte(out.String()), nil
}

func (f *CustomFormatter) levelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel:
		return 37
	case logrus.InfoLevel:
		return 32
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel:
		return 31
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35
	default:
		return 37
	}
}

// eventPrefix maps engine event messages to short tags
func eventPrefix(message string) string {
	switch {
	case strings.Contains(message, "Execution finished"):
		return "EXEC"
	case strings.Contains(message, "Crash detected"):
		return "CRASH"
	case strings.Contains(message, "Hang detected"):
		return "HANG"
	case strings.Contains(message, "Coverage updated"):
		return "COVERAGE"
	case strings.Contains(message, "Statistics update"):
		return "STATS"
	case strings.Contains(message, "Worker"):
		return "WORKER"
	case strings.Contains(message, "Engine"):
		return "ENGINE"
	default:
		return ""
	}
}

// formatFields renders structured fields sorted by key so log lines are
// stable across runs.
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := f.formatValue(fields[k])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", k, v))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return strings.Join(parts, " ")
}

func (f *CustomFormatter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case float64:
		return fmt.Sprintf("%.2f", v)
	case string:
		if len(v) > 64 {
			return v[:64] + "..."
		}
		return v
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package logging

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is shared by every package of the process. It writes to stderr
// until Init redirects it.
var Logger = logrus.New()

var once sync.Once

// Formatter prints one line per entry in the "Event ID: X, Description: Y" register.
type Formatter struct {
	SystemName string
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	fmt.Fprintf(b, "%s %s [%s] %s",
		entry.Time.Format("2006-01-02 15:04:05"),
		strings.ToUpper(entry.Level.String()),
		f.SystemName,
		entry.Message,
	)
	for _, k := range slices.Sorted(maps.Keys(entry.Data)) {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Init configures Logger once. An empty file keeps output on stderr;
// otherwise the file is rotated by lumberjack.
func Init(system, file, level string) {
	once.Do(func() {
		var out io.Writer = os.Stderr
		if file != "" {
			out = &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			}
		}
		Logger.SetOutput(out)
		Logger.SetFormatter(&Formatter{SystemName: system})

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Logger.SetLevel(lvl)

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: logger ready for %s (level %s)", system, lvl)
	})
}

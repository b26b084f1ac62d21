// pkg/utils/logger.go

package utils

import (
    "fmt"
    glog "log"
    "os"
    "strings"
    "sync"

    "github.com/mattn/go-isatty"
    "github.com/sirupsen/logrus"
)

var mu sync.Mutex
var loggers = make(map[string]*logHandle)

var colorful = isatty.IsTerminal(os.Stderr.Fd())

var syslogHook logrus.Hook

type logHandle struct {
    logrus.Logger

    name string
    lvl  *logrus.Level
}

func (l *logHandle) Format(e *logrus.Entry) ([]byte, error) {
    lvl := e.Level
    if l.lvl != nil {
        lvl = *l.lvl
    }
    level := strings.ToUpper(lvl.String())
    if colorful {
        var color int
        switch lvl {
        case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
            color = 31 // red
        case logrus.WarnLevel:
            color = 33 // yellow
        case logrus.DebugLevel, logrus.TraceLevel:
            color = 36 // cyan
        default:
            color = 32 // green
        }
        level = fmt.Sprintf("\033[1;%dm%s\033[0m", color, level)
    }

    const timeFormat = "2006/01/02 15:04:05.000000"
    timestamp := e.Time.Format(timeFormat)

    str := fmt.Sprintf("%v %s[%d] <%v>: %v",
        timestamp,
        l.name,
        os.Getpid(),
        level,
        e.Message)

    if len(e.Data) != 0 {
        str += fmt.Sprintf(" %v", e.Data)
    }

    str += "\n"
    return []byte(str), nil
}

func newLogger(name string) *logHandle {
    l := &logHandle{name: name}
    l.Out = os.Stderr
    l.Formatter = l
    l.Level = logrus.InfoLevel
    l.Hooks = make(logrus.LevelHooks)
    if syslogHook != nil {
        l.Hooks.Add(syslogHook)
    }
    return l
}

// GetLogger returns a logger mapped to `name`
func GetLogger(name string) *logHandle {
    mu.Lock()
    defer mu.Unlock()

    if logger, ok := loggers[name]; ok {
        return logger
    }
    logger := newLogger(name)
    loggers[name] = logger
    return logger
}

// GetStdLogger returns standard golang logger
func GetStdLogger(l *logHandle, lvl logrus.Level) *glog.Logger {
    mu.Lock()
    defer mu.Unlock()

    w := l.Writer()
    if lh, ok := l.Formatter.(*logHandle); ok {
        lh.lvl = &lvl
    }
    l.Level = lvl
    return glog.New(w, "", 0)
}

// SetLogLevel sets Level to all the loggers in the map
func SetLogLevel(lvl logrus.Level) {
    mu.Lock()
    defer mu.Unlock()
    for _, logger := range loggers {
        logger.Level = lvl
    }
}

func SetOutFile(name string) {
    file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
    if err != nil {
        return
    }
    mu.Lock()
    defer mu.Unlock()
    colorful = false
    for _, logger := range loggers {
        logger.SetOutput(file)
    }
}

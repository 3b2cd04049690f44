package logging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Setter customises the root logger
type Setter func(*logrus.Logger) error

var root = struct {
	logger *logrus.Logger
	mutex  *sync.Mutex
}{
	logger: func() *logrus.Logger {
		l := logrus.New()
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		return l
	}(),
	mutex: &sync.Mutex{},
}

// Logger is the field logger handed to components
type Logger interface {
	logrus.FieldLogger
}

// New returns a logger tagged with the component name
func New(component string, setters ...Setter) Logger {
	for _, setter := range setters {
		// setters only fail on invalid input which they already report
		_ = Set(setter)
	}
	return root.logger.WithField("component", component)
}

// Set applies setter to the root logger
func Set(setter Setter) error {
	root.mutex.Lock()
	err := setter(root.logger)
	root.mutex.Unlock()
	return err
}

// Level sets the root logger level; unparsable levels fall back to info
func Level(lvl string) Setter {
	l, err := logrus.ParseLevel(lvl)
	if err != nil {
		root.logger.WithError(err).Errorf("unable to parse provided level %q", lvl)
		l = logrus.InfoLevel
	}
	return func(r *logrus.Logger) error {
		r.SetLevel(l)
		return nil
	}
}

// Output redirects the root logger
func Output(w io.Writer) Setter {
	return func(r *logrus.Logger) error {
		r.SetOutput(w)
		return nil
	}
}

// JSON switches the root logger to JSON output
func JSON() Setter {
	return func(r *logrus.Logger) error {
		r.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}
}

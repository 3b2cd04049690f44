package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	defer func() {
		_ = Set(Output(os.Stderr))
		_ = Set(Level("info"))
		_ = Set(func(r *logrus.Logger) error {
			r.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		})
	}()

	log := New("arbiter", Output(buf), Level("debug"), JSON())
	log.WithField("agent", 3).Debug("granted")
	assert.Contains(t, buf.String(), `"component":"arbiter"`)
	assert.Contains(t, buf.String(), `"agent":3`)
	assert.Contains(t, buf.String(), `"msg":"granted"`)

	buf.Reset()
	_ = Set(Level("not-a-level"))
	log.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")
}

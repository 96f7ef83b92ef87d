package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/unicampus/backend/core"
)

func TestRollbarLogger_prepare(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})

	err := errors.New("boom")
	extra := map[string]interface{}{"request_id": "abc"}
	args := logger.prepare("failed", []interface{}{
		err,
		core.Principal{CPF: "52998224725", Nome: "Ana"},
		extra,
		core.Principal{CPF: "11144477735"},
	})
	assert.Equal(t, []interface{}{"failed", err, extra}, args)
}

func TestRollbarLogger_MirrorsToStd(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})

	logger.Warn("slow request", map[string]interface{}{"path": "/api/cursos"})
	assert.Contains(t, buf.String(), "[WARN] slow request")
	assert.Contains(t, buf.String(), "/api/cursos")
}

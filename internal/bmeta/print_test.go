package bmeta

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	logger, hook := test.NewNullLogger()

	Print(logger, "v1.2.0", "", "abc123")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "v1.2.0", entry.Data["version"])
	assert.Equal(t, defaultBuildMeta, entry.Data["date"])
	assert.Equal(t, "abc123", entry.Data["commit"])
}

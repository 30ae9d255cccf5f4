package instance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDPrefersExplicitValue(t *testing.T) {
	t.Setenv("AFRIFOOD_INSTANCE_ID", "worker-7")
	t.Setenv("DYNO", "worker.1")
	require.Equal(t, "worker-7", ID("worker"))
}

func TestIDFallsBackToDyno(t *testing.T) {
	t.Setenv("AFRIFOOD_INSTANCE_ID", "")
	t.Setenv("DYNO", "web.2")
	require.Equal(t, "web.2", ID("api"))
}

package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []Status{Pending, Running, Completed, Failed, Cancelled}

	allowed := map[Status][]Status{
		Pending: {Running, Cancelled},
		Running: {Completed, Failed, Cancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}

			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, Pending.IsTerminal())
	assert.False(t, Running.IsTerminal())
	assert.True(t, Completed.IsTerminal())
	assert.True(t, Failed.IsTerminal())
	assert.True(t, Cancelled.IsTerminal())
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Status{"s": Failed})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"Failed"}`, string(b))

	var out map[string]Status
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, Failed, out["s"])

	assert.Error(t, json.Unmarshal([]byte(`{"s":"Paused"}`), &out))
	assert.Equal(t, "Unknown(42)", Status(42).String())
}

package sqlguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckParameter(t *testing.T) {
	t.Run("clean string", func(t *testing.T) {
		assert.Nil(t, CheckParameter("city", "Cape Town"))
	})

	t.Run("non-string values skipped", func(t *testing.T) {
		assert.Nil(t, CheckParameter("count", 42))
		assert.Nil(t, CheckParameter("ratio", 3.14))
		assert.Nil(t, CheckParameter("active", true))
		assert.Nil(t, CheckParameter("missing", nil))
	})

	t.Run("classic tautology flagged", func(t *testing.T) {
		finding := CheckParameter("name", "' OR '1'='1")
		require.NotNil(t, finding)
		assert.Equal(t, "name", finding.ParamName)
		assert.NotEmpty(t, finding.Fingerprint)
	})

	t.Run("union payload flagged", func(t *testing.T) {
		finding := CheckParameter("q", "x' UNION SELECT password FROM users--")
		require.NotNil(t, finding)
		assert.Equal(t, "q", finding.ParamName)
	})
}

func TestCheckParameters(t *testing.T) {
	t.Run("all clean", func(t *testing.T) {
		findings := CheckParameters(map[string]any{
			"city":  "Berlin",
			"limit": 10,
		})
		assert.Empty(t, findings)
	})

	t.Run("dirty parameter reported by name", func(t *testing.T) {
		findings := CheckParameters(map[string]any{
			"city": "Berlin",
			"name": "'; DROP TABLE users--",
		})
		require.Len(t, findings, 1)
		assert.Equal(t, "name", findings[0].ParamName)
	})

	t.Run("nil map", func(t *testing.T) {
		assert.Empty(t, CheckParameters(nil))
	})
}

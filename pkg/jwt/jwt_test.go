package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Ahorro-api/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", "agent-1", pkgjwt.RoleAgent, "ahorro-test", 5)
	require.NoError(t, err)

	agentID, role, err := pkgjwt.Parse("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", agentID)
	assert.Equal(t, pkgjwt.RoleAgent, role)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", "agent-1", pkgjwt.RoleAgent, "ahorro-test", 5)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("other", tok)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", "agent-1", pkgjwt.RoleAgent, "ahorro-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("secret", tok)
	assert.Error(t, err)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := pkgjwt.Generate("", "agent-1", pkgjwt.RoleAgent, "ahorro-test", 5)
	assert.Error(t, err)
}

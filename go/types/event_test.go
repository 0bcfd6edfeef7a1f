package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	var valid = Event{SessionID: "s1", Role: RoleUser, TimestampMs: 1, Text: "hi"}
	require.NoError(t, valid.Validate())

	var missingSession = valid
	missingSession.SessionID = ""
	require.Error(t, missingSession.Validate())

	var badRole = valid
	badRole.Role = "bogus"
	require.Error(t, badRole.Validate())

	var badTs = valid
	badTs.TimestampMs = 0
	require.Error(t, badTs.Validate())
}

func TestAllDocumentedRolesValidate(t *testing.T) {
	for _, r := range []Role{
		RoleUser, RoleAssistant, RoleToolResult,
		RoleSessionStart, RoleSessionEnd,
		RoleSubagentStart, RoleSubagentStop,
	} {
		var ev = Event{SessionID: "s1", Role: r, TimestampMs: 1}
		require.NoError(t, ev.Validate(), "role %q should validate", r)
	}
}

package main

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"seatplan/solver"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	t.Setenv("CLIENT_SECRET", "test-secret")

	token := signEmail("teacher@example.com")
	r := httptest.NewRequest("GET", "/api/plans", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	email, ok := authorize(r)
	require.True(t, ok)
	require.Equal(t, "teacher@example.com", email)
}

func TestAuthRejectsTamperedToken(t *testing.T) {
	t.Setenv("CLIENT_SECRET", "test-secret")

	token := signEmail("teacher@example.com")
	r := httptest.NewRequest("GET", "/api/plans", nil)
	r.Header.Set("Authorization", "Bearer x"+token)
	_, ok := authorize(r)
	require.False(t, ok)

	r.Header.Set("Authorization", "Bearer not-a-token")
	_, ok = authorize(r)
	require.False(t, ok)
}

func TestIsAdmin(t *testing.T) {
	t.Setenv("ADMINS", "root@example.com, other@example.com")
	require.True(t, isAdmin("root@example.com"))
	require.True(t, isAdmin("other@example.com"))
	require.False(t, isAdmin("teacher@example.com"))
}

func TestSolveRequestDefaults(t *testing.T) {
	var req solveRequest
	params, seed := req.params()
	require.Equal(t, solver.DefaultSolveParams, params)
	require.Equal(t, uint32(42), seed)

	s := uint32(0)
	req = solveRequest{Restarts: 3, Iters: 100, T0: 2, T1: 0.5, Seed: &s}
	params, seed = req.params()
	require.Equal(t, solver.SolveParams{Restarts: 3, Iters: 100, T0: 2, T1: 0.5}, params)
	require.Equal(t, uint32(0), seed, "an explicit zero seed must not be replaced")
}

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPath(t *testing.T) {
	assert.Equal(t, "/sessions/T1", sessionPath("T1"))
	assert.Equal(t, "/sessions/a%2Fb/courts/2/start", sessionPath("a/b", "courts", "2", "start"))
}

func TestFinishCommandSendsWinner(t *testing.T) {
	var gotPath, gotQuery string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	host = srv.URL
	dryRun = true
	defer func() { dryRun = false }()

	require.NoError(t, finishCmd.RunE(finishCmd, []string{"T1", "2", "top"}))
	assert.Equal(t, "/sessions/T1/courts/2/finish", gotPath)
	assert.Equal(t, "dry_run=true", gotQuery)
	assert.Equal(t, "top", got["winner"])
}

func TestCourtMustBeNumeric(t *testing.T) {
	err := startCmd.RunE(startCmd, []string{"T1", "two"})
	assert.Error(t, err)
}

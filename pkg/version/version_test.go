package version

import (
	"net/http"
	"net/http/httptest"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "1.2.3"}, "1.2.3 (development)"},
		{Info{Version: "1.2.3", Commit: "abc1234"}, "1.2.3 (commit: abc1234)"},
		{Info{Version: "1.2.3", BuildTime: "2019-05-01T10:00:00Z"}, "1.2.3 (built at: 2019-05-01T10:00:00Z)"},
		{
			Info{Version: "1.2.3", Commit: "abc1234", BuildTime: "2019-05-01T10:00:00Z"},
			"1.2.3 (commit: abc1234, built at: 2019-05-01T10:00:00Z)",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.info.String())
	}
}

func TestInfoWithSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "abc1234def5678"},
		{Key: "vcs.time", Value: "2019-05-01T12:00:00+02:00"},
		{Key: "vcs.tag", Value: "v1.4.0"},
		{Key: "vcs.modified", Value: "true"},
	}

	info := Info{Version: devVersion}.withSettings(settings)
	assert.Equal(t, Info{Version: "1.4.0-dirty", Commit: "abc1234", BuildTime: "2019-05-01T10:00:00Z"}, info)

	linked := Info{Version: "2.0.0", Commit: "fedcba9", BuildTime: "2020-01-01T00:00:00Z"}
	assert.Equal(t, linked, linked.withSettings(settings), "ldflags win over VCS stamps")
}

func TestNewer(t *testing.T) {
	assert.True(t, Newer("1.10.0", "1.9.3"))
	assert.True(t, Newer("v2.0.0", "1.9.9"))
	assert.True(t, Newer("1.2.1", "1.2"))
	assert.False(t, Newer("1.2.0", "1.2"))
	assert.False(t, Newer("1.2.3", "1.2.3-dirty"))
	assert.False(t, Newer("1.0.0", "1.0.1"))
}

func TestLatestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.1"}`))
	}))
	defer server.Close()
	defer func(u string) { releasesURL = u }(releasesURL)
	releasesURL = server.URL

	latest, err := LatestVersion(server.Client())
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", latest)
}

func TestLatestVersionHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	defer func(u string) { releasesURL = u }(releasesURL)
	releasesURL = server.URL

	_, err := LatestVersion(server.Client())
	assert.ErrorContains(t, err, "404")
}

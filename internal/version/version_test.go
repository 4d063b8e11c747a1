package version

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.BuildDate)
	assert.Empty(t, info.FrontendVersion)
}

func TestGetWithFrontend(t *testing.T) {
	tests := []struct {
		name string
		site fstest.MapFS
		want string
	}{
		{
			name: "reads and trims version file",
			site: fstest.MapFS{"version.txt": &fstest.MapFile{Data: []byte("  site-v2.5.0 \n")}},
			want: "site-v2.5.0",
		},
		{
			name: "missing version file",
			site: fstest.MapFS{"index.html": &fstest.MapFile{Data: []byte("<html></html>")}},
			want: "",
		},
		{
			name: "empty version file",
			site: fstest.MapFS{"version.txt": &fstest.MapFile{Data: []byte("")}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetWithFrontend(tt.site)

			assert.Equal(t, Version, info.Version)
			assert.Equal(t, tt.want, info.FrontendVersion)
		})
	}

	assert.Empty(t, GetWithFrontend(nil).FrontendVersion)
}

func TestShort(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestInfo_JSONMarshaling(t *testing.T) {
	data, err := json.Marshal(Get())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "frontend_version")

	data, err = json.Marshal(GetWithFrontend(fstest.MapFS{
		"version.txt": &fstest.MapFile{Data: []byte("site-v1.0.0")},
	}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"frontend_version":"site-v1.0.0"`)
}

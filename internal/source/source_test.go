package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "hybrid", want: Hybrid},
		{in: "Official", want: OfficialOnly},
		{in: "official-only", want: OfficialOnly},
		{in: " mirror ", want: MirrorOnly},
		{in: "MirrorOnly", want: MirrorOnly},
		{in: "fastest", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategyYAML(t *testing.T) {
	var v struct {
		Strategy Strategy `yaml:"strategy"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("strategy: mirror\n"), &v))
	assert.Equal(t, MirrorOnly, v.Strategy)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "strategy: mirror\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte("strategy: [a]\n"), &v))
	assert.ErrorIs(t, yaml.Unmarshal([]byte("strategy: nope\n"), &v), ErrUnknownStrategy)
}

func TestMirrorURL(t *testing.T) {
	tests := []struct {
		official string
		want     string
	}{
		{
			official: "https://piston-data.mojang.com/v1/objects/abc/client.jar",
			want:     "https://bmclapi2.bangbang93.com/v1/objects/abc/client.jar",
		},
		{
			official: "https://resources.download.minecraft.net/ab/abcdef",
			want:     "https://bmclapi2.bangbang93.com/assets/ab/abcdef",
		},
		{
			official: "https://libraries.minecraft.net/org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1.jar",
			want:     "https://bmclapi2.bangbang93.com/maven/org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1.jar",
		},
		{official: "https://launchermeta.mojang.com.evil.example/x", want: ""},
		{official: "https://bmclapi2.bangbang93.com/v1/objects/abc", want: ""},
		{official: "https://example.com/file", want: ""},
		{official: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.official, func(t *testing.T) {
			assert.Equal(t, tt.want, MirrorURL(tt.official))
		})
	}
}

func TestEndpoints(t *testing.T) {
	e := NewEndpoints("https://launcher.mojang.com/v1/x.jar", "")
	assert.Equal(t, "https://bmclapi2.bangbang93.com/v1/x.jar", e.Mirror)

	e = NewEndpoints("https://launcher.mojang.com/v1/x.jar", "https://custom.example/x.jar")
	assert.Equal(t, "https://custom.example/x.jar", e.Mirror)

	assert.Equal(t, Endpoint{Kind: Mirror, URL: e.Mirror}, e.Get(Mirror))
	assert.Equal(t, Endpoint{Kind: Official, URL: e.Official}, e.Get(Official))
	assert.Equal(t, "official", Official.String())
	assert.Equal(t, "mirror", Mirror.String())
}

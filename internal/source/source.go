package source

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownStrategy = errors.New("unknown download strategy")
	ErrNoEndpoint      = errors.New("no endpoint for strategy")
)

// Kind identifies which side of the failover pair an endpoint belongs to.
type Kind int

const (
	Official Kind = iota
	Mirror
)

func (k Kind) String() string {
	if k == Mirror {
		return "mirror"
	}

	return "official"
}

// Strategy decides which sources a chunk may use.
type Strategy int

const (
	Hybrid Strategy = iota
	OfficialOnly
	MirrorOnly
)

func (s Strategy) String() string {
	switch s {
	case Hybrid:
		return "hybrid"
	case OfficialOnly:
		return "official"
	case MirrorOnly:
		return "mirror"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "hybrid", "official", "mirror" and the long forms
// "official-only" and "mirror-only", case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hybrid":
		return Hybrid, nil
	case "official", "official-only", "officialonly":
		return OfficialOnly, nil
	case "mirror", "mirror-only", "mirroronly":
		return MirrorOnly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

func (s Strategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected a scalar at line %d", ErrUnknownStrategy, value.Line)
	}

	return s.UnmarshalText([]byte(value.Value))
}

// Endpoint is one resolved URL for a file.
type Endpoint struct {
	Kind Kind
	URL  string
}

// Endpoints holds the official and mirror URL of a single file. Either may
// be empty.
type Endpoints struct {
	Official string `yaml:"official" json:"official"`
	Mirror   string `yaml:"mirror,omitempty" json:"mirror,omitempty"`
}

// NewEndpoints builds an endpoint pair, deriving the mirror from the official
// URL when mirror is empty.
func NewEndpoints(official, mirror string) Endpoints {
	if mirror == "" {
		mirror = MirrorURL(official)
	}

	return Endpoints{Official: official, Mirror: mirror}
}

// Get returns the endpoint of the given kind.
func (e Endpoints) Get(k Kind) Endpoint {
	if k == Mirror {
		return Endpoint{Kind: Mirror, URL: e.Mirror}
	}

	return Endpoint{Kind: Official, URL: e.Official}
}

func (e Endpoints) has(k Kind) bool {
	return e.Get(k).URL != ""
}

var mirrorHosts = []struct {
	official string
	mirror   string
}{
	{"https://launchermeta.mojang.com", "https://bmclapi2.bangbang93.com"},
	{"https://launcher.mojang.com", "https://bmclapi2.bangbang93.com"},
	{"https://piston-meta.mojang.com", "https://bmclapi2.bangbang93.com"},
	{"https://piston-data.mojang.com", "https://bmclapi2.bangbang93.com"},
	{"https://resources.download.minecraft.net", "https://bmclapi2.bangbang93.com/assets"},
	{"https://libraries.minecraft.net", "https://bmclapi2.bangbang93.com/maven"},
}

// MirrorURL rewrites an official Mojang URL to its BMCLAPI equivalent. It
// returns "" when the URL is already a mirror URL or has no known mirror.
func MirrorURL(official string) string {
	if official == "" || IsMirrorURL(official) {
		return ""
	}

	for _, h := range mirrorHosts {
		if rest, ok := strings.CutPrefix(official, h.official); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
			return h.mirror + rest
		}
	}

	return ""
}

// IsMirrorURL reports whether u points at a known mirror.
func IsMirrorURL(u string) bool {
	return strings.Contains(u, "bmclapi") || strings.Contains(u, "mcbbs")
}

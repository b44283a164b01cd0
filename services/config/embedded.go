package config

import (
	"embed"
	"path"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed boards/*.yaml
var boards embed.FS

// Build-time identity overrides, set with
//
//	-ldflags "-X pairlink-go/services/config.DeviceName=... -X ..."
//
// Empty values leave the embedded configuration untouched.
var (
	Board              = "pico"
	DeviceName         string
	ServiceUUID        string
	CharacteristicUUID string
)

// EmbeddedConfigLookup allows overriding how board configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, err := boards.ReadFile(path.Join("boards", board+".yaml"))
	if err != nil {
		return nil, false
	}
	return b, true
}

// Boards lists the embedded board names.
func Boards() []string {
	ents, err := boards.ReadDir("boards")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		n := e.Name()
		out = append(out, n[:len(n)-len(path.Ext(n))])
	}
	return out
}

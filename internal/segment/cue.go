package segment

import (
	"embed"
	"fmt"
)

// CueAsset is the name of the embedded transition cue.
const CueAsset = "cue.wav"

//go:embed assets/*.wav
var assets embed.FS

func readAsset(name string) ([]byte, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return nil, fmt.Errorf("bundled asset %q: %w", name, err)
	}
	return data, nil
}

package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const Dir = "./resources"

func init() {
	// create the static assets dir if not exists
	if _, err := os.Stat(Dir); os.IsNotExist(err) {
		os.Mkdir(Dir, 0755)
	}
}

// SaveLiveMap stores the latest rendered track map for a session so it can be
// served again when a later render fails mid-session.
func SaveLiveMap(sessionKey, svg string) error {
	err := os.WriteFile(liveMapPath(sessionKey), []byte(svg), 0644)
	if err != nil {
		return errors.Wrapf(err, "saving live map for session %s", sessionKey)
	}
	return nil
}

// LoadLiveMap returns the last stored track map for a session.
func LoadLiveMap(sessionKey string) (string, error) {
	data, err := os.ReadFile(liveMapPath(sessionKey))
	if err != nil {
		return "", errors.Wrapf(err, "loading live map for session %s", sessionKey)
	}
	return string(data), nil
}

func liveMapPath(sessionKey string) string {
	return filepath.Join(Dir, fmt.Sprintf("livemap_%s.svg", sessionKey))
}

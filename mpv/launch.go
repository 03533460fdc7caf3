package mpv

import (
	"os/exec"

	"github.com/user/mediacms-timeline/deps"
)

// LaunchMpv starts mpv paused on videoPath with the IPC socket enabled.
// keep-open stops mpv from exiting when playback reaches the end, so the
// editor can seek back. Returns the running process for cleanup.
func LaunchMpv(videoPath, socketPath string) (*exec.Cmd, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, err
	}
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	cmd := exec.Command("mpv",
		"--input-ipc-server="+socketPath,
		"--pause",
		"--keep-open=yes",
		"--force-window=yes",
		videoPath,
	)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return cmd, nil
}

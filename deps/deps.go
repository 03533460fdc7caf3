package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// Dependency describes an external binary the editor shells out to.
type Dependency struct {
	Name       string
	InstallURL string
	// Purpose is shown by the doctor command.
	Purpose string
}

// Known lists every external binary, in doctor display order.
var Known = []Dependency{
	{Name: "mpv", InstallURL: MpvInstallURL, Purpose: "video playback for the editor"},
	{Name: "ffmpeg", InstallURL: FfmpegInstallURL, Purpose: "segment export and thumbnails"},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Check returns a *DependencyError when d is not on PATH.
func Check(d Dependency) error {
	if _, err := lookPath(d.Name); err != nil {
		return &DependencyError{Name: d.Name, InstallURL: d.InstallURL}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return Check(Known[0])
}

// CheckFfmpeg checks if ffmpeg is installed and available in PATH
func CheckFfmpeg() error {
	return Check(Known[1])
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones
func CheckAll() []error {
	var errs []error
	for _, d := range Known {
		if err := Check(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

package deps

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAll(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()

	lookPath = func(name string) (string, error) {
		if name == "ffmpeg" {
			return "", exec.ErrNotFound
		}
		return "/usr/bin/" + name, nil
	}

	assert.NoError(t, CheckMpv())
	errs := CheckAll()
	if assert.Len(t, errs, 1) {
		var depErr *DependencyError
		assert.True(t, errors.As(errs[0], &depErr))
		assert.Equal(t, "ffmpeg", depErr.Name)
		assert.Contains(t, depErr.Error(), FfmpegInstallURL)
	}
}

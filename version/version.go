/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package version

import (
	"fmt"
	"runtime"
)

var (
	projectName = "neoacl"
	major       = 1
	minor       = 0
	patch       = 0

	gitTag    = "Not provided"
	buildTime = "Not provided"
)

type Version struct {
	ProjectName string
	Major       int
	Minor       int
	Patch       int
	GitTag      string
	BuildTime   string
	GoVersion   string
	Platform    string
}

// GetVersion returns the version.
func GetVersion() *Version {
	return &Version{
		ProjectName: projectName,
		Major:       major,
		Minor:       minor,
		Patch:       patch,
		GitTag:      gitTag,
		BuildTime:   buildTime,
		GoVersion:   runtime.Version(),
		Platform:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

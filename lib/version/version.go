// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns the --version line, e.g. "0.1.0-dev (abc1234, 2026-...)".
func Info() string {
	commit, dirty := Commit(), GitDirty == "true"
	if GitCommit == "unknown" {
		_, dirty = vcsSettings()
	}
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, BuildTime)
}

// Full adds the Go version and platform to Info.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// Commit returns the injected git SHA, falling back to the toolchain's
// VCS stamp.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if revision, _ := vcsSettings(); revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		return revision
	}
	return GitCommit
}

// UserAgent identifies the taskboard client in HTTP requests.
func UserAgent() string {
	return "taskboard/" + Version
}

func vcsSettings() (revision string, modified bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return revision, modified
}

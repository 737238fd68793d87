// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads taskboard server configuration.
//
// Configuration comes from at most one file, named by a --config flag
// (via [LoadFile]) or the TASKBOARD_CONFIG environment variable (via
// [Load]). Without either, [Load] returns [Default]. There is no file
// discovery. Files ending in .json or .jsonc are read as JSON with
// comments and trailing commas; anything else is YAML.
//
// A file may carry development, staging, and production sections that
// override base values when [Config].Environment matches.
//
// ${VAR} and ${VAR:-default} are expanded in storage.path. No other
// environment variables override config values. The token signing
// secret is never stored in the file: auth.secret_env names the
// environment variable it is read from.
package config

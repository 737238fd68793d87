// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/secret"
)

// readPassword reads a password from passwordFile, from standard input
// when passwordFile is "-", or from an echo-free terminal prompt when
// passwordFile is empty. Trailing newlines are stripped.
func (e *environment) readPassword(passwordFile string) (*secret.Buffer, error) {
	var data []byte
	switch passwordFile {
	case "":
		if !e.terminal() {
			return nil, cli.Validation("no terminal available for interactive password prompt (use --password-file)")
		}
		fmt.Fprint(e.stderr, "Password: ")
		read, err := e.readTerminal()
		fmt.Fprintln(e.stderr)
		if err != nil {
			return nil, cli.Internal("reading password: %w", err)
		}
		data = read

	case "-":
		line, err := bufio.NewReader(e.stdin).ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, cli.Internal("reading password from stdin: %w", err)
		}
		data = line

	default:
		read, err := os.ReadFile(passwordFile)
		if err != nil {
			return nil, cli.Internal("reading %s: %w", passwordFile, err)
		}
		data = read
	}

	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		secret.Zero(data)
		return nil, cli.Validation("password is empty")
	}
	buffer, err := secret.NewFromBytes(trimmed)
	secret.Zero(data)
	if err != nil {
		return nil, cli.Internal("storing password: %w", err)
	}
	return buffer, nil
}

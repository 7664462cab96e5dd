// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Interactive confirmation prompts.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm asks a yes/no question and returns the answer. Returns false
// when stdin is not a terminal, so destructive commands refuse to run
// unattended without --confirm.
func Confirm(question string) bool {
	if !IsTTY() {
		return false
	}

	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for the codearc CLI.
//
// Every handler returns errors; main decides how to display them and
// which exit code to use.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zrxarchit/codearc-tui/internal/llm"
	"github.com/zrxarchit/codearc-tui/internal/store"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error.
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments.
	ExitUsageError = 2
	// ExitConfigError indicates a configuration error.
	ExitConfigError = 3
	// ExitAuthError indicates a missing or rejected API key.
	ExitAuthError = 4
	// ExitNotFoundError indicates a resource was not found.
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError represents invalid arguments to a command.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// NotFoundError represents a resource that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}

	if errors.Is(err, llm.ErrNoAPIKey) || errors.Is(err, store.ErrNoAPIKey) {
		return ExitAuthError
	}

	if strings.Contains(strings.ToLower(err.Error()), "config") {
		return ExitConfigError
	}

	return ExitGeneralError
}

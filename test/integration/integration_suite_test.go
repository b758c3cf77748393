// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Dogma Engine Contributors

//go:build integration

// Package integration provides end-to-end integration tests for the
// Dogma engine: load a policy directory from disk, compile it, and
// evaluate it the way the CLI and an embedding service would.
package integration

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dogma Engine Integration Suite")
}

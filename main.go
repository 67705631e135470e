// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/lugares/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}

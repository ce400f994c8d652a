// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "github.com/delldu/poolformer/cmd/poolctl"
)

func main() {
	cmd.Execute()
}

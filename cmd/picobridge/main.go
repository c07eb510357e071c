// PicoBridge - LINE <-> Telegram message bridge
// License: MIT
//
// Copyright (c) 2026 PicoClaw contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picobridge/cmd/picobridge/internal"
	"github.com/tinyland-inc/picobridge/cmd/picobridge/internal/binding"
	"github.com/tinyland-inc/picobridge/cmd/picobridge/internal/gateway"
	"github.com/tinyland-inc/picobridge/cmd/picobridge/internal/version"
)

func NewPicobridgeCommand() *cobra.Command {
	short := fmt.Sprintf("%s picobridge - LINE <-> Telegram bridge v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "picobridge",
		Short:   short,
		Example: "picobridge gateway",
	}

	cmd.AddCommand(
		gateway.NewGatewayCommand(),
		binding.NewBindingCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewPicobridgeCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

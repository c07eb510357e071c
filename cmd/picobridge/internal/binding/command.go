package binding

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picobridge/cmd/picobridge/internal"
	"github.com/tinyland-inc/picobridge/pkg/state"
	"github.com/tinyland-inc/picobridge/pkg/utils"
)

func NewBindingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binding",
		Short: "Inspect or change the LINE destination for Telegram messages",
		Example: `  picobridge binding show
  picobridge binding set C0123456789abcdef`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current LINE destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return showBinding(cmd, store)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <destination-id>",
		Short: "Replace the LINE destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return setBinding(cmd, store, args[0], time.Now())
		},
	}

	cmd.AddCommand(showCmd, setCmd)

	return cmd
}

func openStore() (state.Store, error) {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.State.Validate(); err != nil {
		return nil, err
	}
	return state.Open(cfg.State)
}

func showBinding(cmd *cobra.Command, store state.Store) error {
	b, ok, err := store.Load(cmd.Context())
	out := cmd.OutOrStdout()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	if !ok {
		_, _ = io.WriteString(out, "No LINE destination bound\n")
		return nil
	}
	fmt.Fprintf(out, "Destination: %s\n", b.DestinationID)
	if b.Origin != "" {
		fmt.Fprintf(out, "Origin:      %s\n", b.Origin)
	}
	if !b.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "Updated:     %s\n", b.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func setBinding(cmd *cobra.Command, store state.Store, id string, now time.Time) error {
	if err := utils.ValidateIdentifier(id); err != nil {
		return err
	}
	err := store.Save(cmd.Context(), state.Binding{
		DestinationID: id,
		Origin:        state.OriginCLI,
		UpdatedAt:     now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("error saving binding: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ LINE destination set to %s\n", id)
	return nil
}

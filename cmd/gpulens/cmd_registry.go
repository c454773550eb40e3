package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gpulens/internal/core/registry"
)

func newRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the GPU model registry",
	}
	cmd.AddCommand(newRegistryCheckCommand())
	cmd.AddCommand(newRegistryListCommand())
	return cmd
}

func newRegistryCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [registry-file]",
		Short: "Validate a registry file (or the embedded one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistryArg(args)
			if err != nil {
				return err
			}
			fmt.Printf("ok: version %d, %d models\n", reg.Version(), reg.Len())
			return nil
		},
	}
}

func newRegistryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [registry-file]",
		Short: "List registry models and key specs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistryArg(args)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tVRAM\tTDP\tMIG\tNVLINK\tGEN")
			for _, m := range reg.Models() {
				fmt.Fprintf(w, "%s\t%s\t%dGB\t%dW\t%d\t%t\t%s\n",
					m.Key, m.Name, m.VRAMGB, m.TDPWatts, m.MIGSupport, m.NVLink, m.Generation)
			}
			return w.Flush()
		},
	}
}

func loadRegistryArg(args []string) (*registry.Registry, error) {
	if len(args) == 0 {
		return registry.Load()
	}
	return registry.LoadFile(args[0])
}

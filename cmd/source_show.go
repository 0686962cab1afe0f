package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var sourceShowCmd = &cobra.Command{
	Use:   "show <source-id>",
	Short: "Print a source config after validation and defaulting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := newStore().Load(args[0])
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Print(string(data))
		return nil
	},
}

func init() {
	sourceCmd.AddCommand(sourceShowCmd)
}

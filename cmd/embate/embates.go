package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Promptonauts/embate/pkg/models"
)

var (
	runID     string
	runType   string
	runTask   string
	runParams []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create one embate and print the resulting record",
	Long: `Create one embate, run its strategy, and print the record as JSON.

Examples:
  embate run --task "Summarize X"
  embate run --type analysis --param project_id=api --param files=main.go`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(func(a *app) error {
			ectx, err := buildContext(runType, runTask, runParams)
			if err != nil {
				return err
			}
			rec, err := a.controller.Create(commandContext(cmd), runID, ectx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored embate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			rec, err := a.controller.Get(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("embate %q not found", args[0])
			}
			return printJSON(cmd.OutOrStdout(), rec)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored embates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(func(a *app) error {
			recs, err := a.controller.List(commandContext(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Type(), r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <active|failed>",
	Short: "Overwrite the status of a stored embate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			rec, err := a.controller.UpdateStatus(commandContext(cmd), args[0], models.EmbateStatus(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		})
	},
}

func init() {
	runCmd.Flags().StringVar(&runID, "id", "", "embate id (generated when empty)")
	runCmd.Flags().StringVar(&runType, "type", "multiagent", "strategy type")
	runCmd.Flags().StringVar(&runTask, "task", "", "unit of work handed to the strategy")
	runCmd.Flags().StringArrayVar(&runParams, "param", nil, "extra context entry as key=value (repeatable)")
}

func withApp(fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	"github.com/tanpawarit/voice-diary/agent/skill"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Print the dialog states and triggers and check every state has a handler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStates(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
}

var errOffline = errors.New("collaborators are not wired in this command")

// offline stands in for storage and the summary queue; states never runs a
// handler.
type offline struct{}

func (offline) WithUser(context.Context, string, func(contractx.Notes) error) error {
	return errOffline
}

func (offline) Enqueue(context.Context, contractx.SummaryJob) error {
	return errOffline
}

func printStates(out io.Writer) error {
	sk, err := skill.New(skill.Config{Timezone: time.UTC.String()}, offline{}, offline{}, nil)
	if err != nil {
		return err
	}
	registry := dialogx.NewRegistry()
	if err := sk.Register(registry); err != nil {
		return err
	}
	policy := dialogx.DefaultPolicy()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tHANDLER")
	for _, st := range statex.AllStatuses() {
		mark := "missing"
		if registry.Bound(st) {
			mark = "bound"
		}
		fmt.Fprintf(w, "%s\t%s\n", st, mark)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TRIGGER\tSTATE")
	triggers := policy.Triggers()
	for _, intent := range policy.TriggerOrder() {
		fmt.Fprintf(w, "%s\t%s\n", intent, triggers[intent])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "INTERRUPT\tSTATE")
	for _, intent := range policy.Interrupts() {
		fmt.Fprintf(w, "%s\t%s\n", intent, statex.StatusIdle)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return registry.Validate()
}

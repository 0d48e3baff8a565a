package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/JehleM/compare-plugin/internal/socket"
)

// send delivers one command to the running comparetui instance and prints
// whatever it answers.
func send(command, target string) error {
	socketPath, pid, err := socket.FindRunningInstance()
	if err != nil {
		return fmt.Errorf("no running comparetui instance found: %w", err)
	}
	log.Printf("found instance pid %d at %s", pid, socketPath)

	client, err := socket.NewClient(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	resp, err := client.SendCommand(command, target)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", command, err)
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Message)
	}
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	return nil
}

// simpleCmd builds a subcommand that sends one fixed command.
func simpleCmd(use, short, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(command, "")
		},
	}
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <setting>",
	Short: "Flip a boolean comparison setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return send(socket.CommandToggle, args[0])
	},
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	verbose := false

	rootCmd := &cobra.Command{
		Use:           "comparectl [command]",
		Short:         "Control a running comparetui instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !verbose {
				log.SetOutput(io.Discard)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the socket lookup")

	rootCmd.AddCommand(
		simpleCmd("compare", "Run the comparison", socket.CommandCompare),
		simpleCmd("recompare", "Re-run the comparison", socket.CommandRecompare),
		simpleCmd("next", "Jump to the next difference", socket.CommandNext),
		simpleCmd("prev", "Jump to the previous difference", socket.CommandPrev),
		simpleCmd("first", "Jump to the first difference", socket.CommandFirst),
		simpleCmd("last", "Jump to the last difference", socket.CommandLast),
		simpleCmd("status", "Print the comparison status", socket.CommandStatus),
		simpleCmd("dump", "Print the full state dump", socket.CommandDump),
		simpleCmd("quit", "Quit the running instance", socket.CommandQuit),
		toggleCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tranvm/dictd/internal/client"
	"github.com/tranvm/dictd/internal/freedict"
)

var (
	serverAddress string
	username      string
	password      string

	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func main() {
	rootCommand := cobra.Command{
		Use:           "dictctl",
		Short:         "Terminal client for the dictionary server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&serverAddress, "addr", "localhost:5555", "server address")
	flags.StringVarP(&username, "user", "u", "", "username")
	flags.StringVarP(&password, "password", "p", "", "password")

	rootCommand.AddCommand(
		newReplCommand(),
		newLookupCommand(),
		newListCommand(),
		newProposeCommand(),
		newPendingCommand(),
		newApproveCommand(),
		newRejectCommand(),
		newSuggestCommand(),
	)
	if err := rootCommand.Execute(); err != nil {
		red.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// connect dials the server and logs in with the global credentials.
func connect(ctx context.Context) (*client.Client, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("both --user and --password are required")
	}

	c, err := client.Dial(ctx, serverAddress)
	if err != nil {
		return nil, err
	}
	role, err := c.Login(username, password)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	yellow.Printf("logged in as %s (%s)\n", username, role)
	return c, nil
}

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = c.Quit() }()

			reply, err := c.Lookup(args[0])
			if err != nil {
				return err
			}
			if !reply.OK() {
				red.Println(reply.Message)
				return nil
			}
			green.Println(reply.Message)
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all words",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = c.Quit() }()

			entries, err := c.List()
			if err != nil {
				return err
			}
			for _, entry := range entries {
				bold.Printf("%s", entry.Word)
				fmt.Printf(": %s\n", entry.Meaning)
			}
			return nil
		},
	}
}

func newProposeCommand() *cobra.Command {
	var update bool

	command := &cobra.Command{
		Use:   "propose <word> <meaning>",
		Short: "Propose adding a word, or updating one with --update",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = c.Quit() }()

			var reply client.Reply
			if update {
				reply, err = c.ProposeUpdate(args[0], args[1])
			} else {
				reply, err = c.ProposeAdd(args[0], args[1])
			}
			if err != nil {
				return err
			}
			if !reply.OK() {
				return fmt.Errorf("%s", reply.Message)
			}
			green.Println(reply.Message)
			return nil
		},
	}
	command.Flags().BoolVar(&update, "update", false, "propose an update to an existing word")
	return command
}

func newPendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List pending requests (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = c.Quit() }()

			proposals, err := c.Pending()
			if err != nil {
				return err
			}
			if len(proposals) == 0 {
				fmt.Println("No pending requests")
				return nil
			}
			for _, p := range proposals {
				printProposal(os.Stdout, p)
			}
			return nil
		},
	}
}

func newApproveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <request_id>",
		Short: "Approve a pending request (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = c.Quit() }()

			reply, err := c.Approve(args[0])
			if err != nil {
				return err
			}
			if !reply.OK() {
				return fmt.Errorf("%s", reply.Message)
			}
			green.Println(reply.Message)
			return nil
		},
	}
}

func newRejectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <request_id>",
		Short: "Reject a pending request (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = c.Quit() }()

			reply, err := c.Reject(args[0])
			if err != nil {
				return err
			}
			if !reply.OK() {
				return fmt.Errorf("%s", reply.Message)
			}
			green.Println(reply.Message)
			return nil
		},
	}
}

func newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <word>",
		Short: "Suggest meanings from the Free Dictionary API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions, err := freedict.NewClient("").Lookup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("freedict lookup: %w", err)
			}
			if len(definitions) == 0 {
				fmt.Printf("No suggestions for %q\n", args[0])
				return nil
			}
			for i, def := range definitions {
				bold.Printf("%d. ", i+1)
				fmt.Printf("/%s/ %s\n", def.PartOfSpeech, def.Definition)
			}
			return nil
		},
	}
}

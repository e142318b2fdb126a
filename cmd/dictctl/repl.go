package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvm/dictd/internal/client"
	"github.com/tranvm/dictd/internal/dictionary"
)

func newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session with the dictionary server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			return runRepl(cmd.Context(), c, os.Stdin, os.Stdout)
		},
	}
}

const replHelp = `Commands:
  tra <word>              look up a word
  list                    list all words
  them <word>:<meaning>   propose adding a word
  sua <word>:<meaning>    propose updating a word
  pending                 list pending requests (admin)
  approve <request_id>    approve a request (admin)
  reject <request_id>     reject a request (admin)
  help                    show this help
  quit                    exit`

func runRepl(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, replHelp)
	for {
		bold.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return c.Quit()
			}
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		switch strings.ToLower(verb) {
		case "help":
			fmt.Fprintln(out, replHelp)

		case "quit", "exit":
			green.Fprintln(out, "Goodbye!")
			return c.Quit()

		case "list":
			entries, err := c.List()
			if err != nil {
				return err
			}
			for _, entry := range entries {
				bold.Fprintf(out, "%s", entry.Word)
				fmt.Fprintf(out, ": %s\n", entry.Meaning)
			}

		case "pending":
			proposals, err := c.Pending()
			if err != nil {
				red.Fprintln(out, err.Error())
				continue
			}
			if len(proposals) == 0 {
				fmt.Fprintln(out, "No pending requests")
				continue
			}
			for _, p := range proposals {
				printProposal(out, p)
			}

		case "tra", "them", "sua", "approve", "reject":
			wire := strings.ToUpper(verb) + "|" + strings.TrimSpace(rest)
			reply, err := c.Raw(wire)
			if err != nil {
				return err
			}
			switch reply.Tag {
			case "SUCCESS":
				green.Fprintln(out, reply.Message)
			case "NOTFOUND":
				yellow.Fprintln(out, reply.Message)
			default:
				red.Fprintln(out, reply.Message)
			}

		default:
			red.Fprintf(out, "Unknown command: %s (try 'help')\n", verb)
		}
	}
}

func printProposal(out io.Writer, p dictionary.Proposal) {
	bold.Fprintf(out, "[%s]", p.ID)
	switch p.Kind {
	case dictionary.ProposalUpdate:
		fmt.Fprintf(out, " UPDATE %s: %s (was: %s)", p.Word, p.NewMeaning, p.OldMeaning)
	default:
		fmt.Fprintf(out, " ADD %s: %s", p.Word, p.Meaning)
	}
	fmt.Fprintf(out, " by %s at %s\n", p.Username, p.SubmittedAt.Format("2006-01-02 15:04:05"))
}

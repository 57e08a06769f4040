package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/spf13/cobra"
)

var askStream bool

var askCmd = &cobra.Command{
	Use:          "ask [prompt]",
	Short:        "Send a single prompt to the configured model",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx); err != nil {
			return err
		}
		chatSvc, err := newChatService(ctx)
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		if !askStream {
			reply, err := chatSvc.Query(ctx, prompt)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, reply)
			return nil
		}

		seq, err := chatSvc.Stream(ctx, []core.Message{{Role: core.RoleUser, Content: prompt, Sequence: 1}}, nil)
		if err != nil {
			return err
		}
		for frag, err := range seq {
			if err != nil {
				fmt.Fprintln(out)
				return err
			}
			fmt.Fprint(out, frag)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVarP(&askStream, "stream", "s", false, "print the answer as it is generated")
	rootCmd.AddCommand(askCmd)
}

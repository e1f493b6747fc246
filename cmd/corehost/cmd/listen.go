/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blacktop/go-corehost/ipc"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listenJSON bool

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().BoolVar(&listenJSON, "json", false, "Print records as JSON lines")
}

var listenCmd = &cobra.Command{
	Use:   "listen [PIPE_NAME]",
	Short: "Print records written to a log channel",
	Long: `Serve the named log channel and print every record until interrupted.
Without a name, a fresh name is generated and printed first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := config.IPC.PipeName
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			name = ipc.NewPipeName()
		}

		ln, err := ipc.Listen(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "listening on %s (%s)\n", name, ln.Addr())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		enc := json.NewEncoder(os.Stdout)
		return ln.Serve(ctx, func(m ipc.Message) {
			if listenJSON {
				printJSON(enc, m)
				return
			}
			switch m := m.(type) {
			case *ipc.LogMessage:
				fmt.Printf("[%s] %s: %s\n", m.Level, m.Source, m.Message)
			case *ipc.InjectionCompleteMessage:
				fmt.Printf("[Injection] pid %d completed=%v\n", m.ProcessID, m.Completed)
			default:
				fmt.Printf("[%s] %s\n", m.MessageType(), unknownRaw(m))
			}
		})
	},
}

// printJSON writes m as one JSON line; failures are logged and the record dropped.
func printJSON(enc *json.Encoder, m ipc.Message) {
	if err := enc.Encode(m); err != nil {
		log.Warn("failed to print record", zap.String("type", m.MessageType()), zap.Error(err))
	}
}

func unknownRaw(m ipc.Message) string {
	if u, ok := m.(*ipc.UnknownMessage); ok {
		return string(u.Raw)
	}
	return ""
}

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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blacktop/go-corehost"
	"github.com/blacktop/go-corehost/ipc"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Record is one log channel record captured during execution.
type Record struct {
	Level   string `json:"level"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ExecuteResult represents the execution result
type ExecuteResult struct {
	Status   int32            `json:"status"`
	Error    string           `json:"error,omitempty"`
	Records  []Record         `json:"records"`
	Metrics  corehost.Metrics `json:"metrics"`
	Hostfxr  string           `json:"hostfxr,omitempty"`
	PipeName string           `json:"pipe_name"`
}

var (
	coreRoot    string
	payloadText string
	remoteInfo  string
	pipeName    string
	drainWait   time.Duration
)

func init() {
	rootCmd.AddCommand(executeCmd)
	executeCmd.Flags().StringVarP(&coreRoot, "core-root", "r", "", "Runtime directory searched before the configured locations")
	executeCmd.Flags().StringVarP(&payloadText, "payload", "p", "", "String passed to the entry point as a UTF-16 payload")
	executeCmd.Flags().StringVar(&remoteInfo, "remote-info", "", "JSON file with a RemoteInfo payload (overrides --payload)")
	executeCmd.Flags().StringVar(&pipeName, "pipe", "", "Log channel name (default: generated)")
	executeCmd.Flags().DurationVar(&drainWait, "drain", 2*time.Second, "How long to wait for outstanding log records")
}

var executeCmd = &cobra.Command{
	Use:   "execute ASSEMBLY ENTRY_POINT",
	Short: "Start the runtime for an assembly and call one of its entry points",
	Long: `Start the .NET runtime for ASSEMBLY and call ENTRY_POINT, a dotted
"Assembly.Name.Type.Method" name resolved from the assembly's directory.

The method must be marked [UnmanagedCallersOnly] and take a single IntPtr.
The result, including every log channel record, is printed as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: runExecute,
}

func runExecute(cmd *cobra.Command, args []string) error {
	assembly, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve assembly path: %w", err)
	}

	payload, err := buildPayload()
	if err != nil {
		return err
	}

	name := pipeName
	if name == "" {
		name = config.IPC.PipeName
	}
	if name == "" {
		name = ipc.NewPipeName()
	}

	ln, err := ipc.Listen(name)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", name, err)
	}

	var (
		mu      sync.Mutex
		records []Record
		done    = make(chan struct{})
		once    sync.Once
	)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	served := make(chan error, 1)
	go func() {
		served <- ln.Serve(ctx, func(m ipc.Message) {
			switch m := m.(type) {
			case *ipc.LogMessage:
				mu.Lock()
				records = append(records, Record{Level: m.Level.String(), Source: m.Source, Message: m.Message})
				mu.Unlock()
			case *ipc.InjectionCompleteMessage:
				once.Do(func() { close(done) })
			}
		})
	}()

	host := corehost.NewHost(config.HostOptions()...)
	result := &ExecuteResult{PipeName: name}
	result.Status, err = execute(host, assembly, args[1], name, payload)
	if err != nil {
		result.Error = err.Error()
	}
	result.Hostfxr = host.HostFxrPath()

	// connections are served in order, so seeing this marker means every
	// earlier record has been handled
	if ch, err := ipc.Dial(name); err == nil {
		if err := ch.SendMessage(ipc.NewInjectionCompleteMessage(os.Getpid(), result.Error == "")); err != nil {
			log.Warn("failed to send completion marker", zap.Error(err))
		}
		ch.Close()
		select {
		case <-done:
		case <-time.After(drainWait):
			log.Warn("timed out waiting for log records", zap.Duration("wait", drainWait))
		}
	}
	cancel()
	if err := <-served; err != nil {
		log.Warn("log listener stopped", zap.Error(err))
	}

	mu.Lock()
	result.Records = records
	mu.Unlock()
	result.Metrics = corehost.GetMetrics()

	output, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

func execute(host *corehost.Host, assembly, entry, pipe string, payload []byte) (int32, error) {
	err := host.Start(corehost.HostArguments{
		AssemblyFilePath: assembly,
		CoreRootPath:     coreRootOrDefault(),
		PipeName:         pipe,
	})
	if err != nil {
		return corehost.Status(err), err
	}

	call, err := corehost.NewAssemblyFunctionCall(filepath.Dir(assembly), entry, pipe, payload)
	if err != nil {
		return corehost.Status(err), err
	}
	return host.ExecuteAssemblyFunction(call)
}

// coreRootOrDefault returns --core-root, else the configured dotnet root, else
// the working directory, since a core root is always required.
func coreRootOrDefault() string {
	if coreRoot != "" {
		return coreRoot
	}
	if config.Runtime.DotnetRoot != "" {
		return config.Runtime.DotnetRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func buildPayload() ([]byte, error) {
	if remoteInfo != "" {
		data, err := os.ReadFile(remoteInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to read remote info: %w", err)
		}
		var info corehost.RemoteInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("failed to parse remote info JSON: %w", err)
		}
		return corehost.EncodeRemoteInfo(info)
	}
	if payloadText == "" {
		return nil, nil
	}
	return corehost.EncodeWideString(payloadText)
}

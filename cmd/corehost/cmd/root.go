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
	"os"

	"github.com/blacktop/go-corehost"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile  string
	logLevel string

	// config is loaded before any subcommand runs.
	config *corehost.Config
)

var rootCmd = &cobra.Command{
	Use:   "corehost",
	Short: "Host the .NET runtime and call into managed assemblies",
	Long: `corehost loads hostfxr, starts the .NET runtime for an assembly and
invokes UnmanagedCallersOnly entry points, printing the log channel records
the native host emits along the way.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = os.Getenv(corehost.EnvConfig)
		}
		var err error
		if path != "" {
			if config, err = corehost.LoadConfig(path); err != nil {
				return err
			}
		} else {
			config = corehost.DefaultConfig()
			config.ApplyEnv()
		}
		if cmd.Flags().Changed("log-level") {
			config.Log.Level = logLevel
		}
		return initLogger(config.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "TOML config file (default $"+corehost.EnvConfig+")")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
}

// initLogger installs the global logger. Logs go to stderr unless a file is
// configured, keeping stdout for command output.
func initLogger(c corehost.LogConfig) error {
	lc := &log.Config{
		Level:  c.Level,
		Format: c.Format,
		File:   log.FileLogConfig{Filename: c.File},
	}
	var (
		lg    = log.L()
		props *log.ZapProperties
		err   error
	)
	if c.File != "" {
		lg, props, err = log.InitLogger(lc)
	} else {
		stderr := zapcore.Lock(os.Stderr)
		lg, props, err = log.InitLoggerWithWriteSyncer(lc, stderr, stderr)
	}
	if err != nil {
		return err
	}
	log.ReplaceGlobals(lg, props)
	corehost.SetLogger(lg)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

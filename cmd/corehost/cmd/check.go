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
	"fmt"

	"github.com/blacktop/go-corehost"
	"github.com/spf13/cobra"
)

var checkCoreRoot string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkCoreRoot, "core-root", "r", "", "Runtime directory searched before the configured locations")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check platform support and hostfxr discovery",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := corehost.Supported()
		if err != nil {
			fmt.Printf("corehost support: error: %v\n", err)
			return nil
		}
		fmt.Printf("corehost support: %v\n", ok)

		boot := corehost.NewBootstrapper(config.Locator(), nil)
		if _, err := boot.EnsureLoaded(checkCoreRoot); err != nil {
			fmt.Printf("hostfxr: %v\n", err)
			return nil
		}
		fmt.Printf("hostfxr: %s\n", boot.Path())
		for _, e := range corehost.RequiredExports() {
			fmt.Printf("  export %s: ok\n", e)
		}
		return nil
	},
}

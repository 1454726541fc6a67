package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/problang/stanfront/runtime/parser"
	"github.com/problang/stanfront/runtime/scanner"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stanfront",
		Short:         "Scan and parse Stan model files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newTokensCmd(), newCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a Stan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			tokenList, err := scanner.New(source).Scan()
			if err != nil {
				return err
			}
			for _, token := range tokenList {
				fmt.Fprintln(cmd.OutOrStdout(), token.String())
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a Stan file and report the first error, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !watch {
				return checkFile(cmd.OutOrStdout(), path)
			}
			if path == "-" {
				return fmt.Errorf("cannot watch stdin")
			}
			return watchFile(cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-check the file whenever it changes")
	return cmd
}

// checkFile runs the full scan/parse pipeline over one file and prints the
// verdict. A scan or parse error is returned, not printed, so single-shot
// mode exits nonzero.
func checkFile(out io.Writer, path string) error {
	source, err := readSource(path)
	if err != nil {
		return err
	}

	tokenList, err := scanner.New(source).Scan()
	if err != nil {
		return err
	}

	if _, err := parser.New(tokenList, parser.WithSource(source)).ParseProgram(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: ok (%d tokens)\n", path, len(tokenList))
	return nil
}

// watchFile re-checks the file on every write. Check failures are reported
// and the loop keeps running; only watcher failures end it.
func watchFile(out io.Writer, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	report := func() {
		if err := checkFile(out, path); err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
		}
	}
	report()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				report()
				// Editors that replace the file drop the watch with it.
				if err := watcher.Add(path); err != nil {
					return fmt.Errorf("re-watching %s: %w", path, err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// readSource reads the named file, or stdin when the name is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(content), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(content), nil
}

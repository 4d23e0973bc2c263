// Command generate emits protected-headers test vectors: one serialized MIME
// message per invocation, on stdout.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/modfin/protomail"
	"github.com/spf13/cobra"
)

func main() {
	gen := &protomail.Generator{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}

	root := &cobra.Command{
		Use:   "generate <scenario>",
		Short: "Generate protected-headers e-mail test vectors",
		Long: `Generate deterministic test vectors for the protected-headers e-mail
scheme. Each scenario produces one byte-stable MIME message on stdout,
demonstrating how a cryptographic envelope (PGP/MIME or S/MIME) wraps and
optionally obscures the message headers.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := gen.Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&gen.OpenSSL, "openssl", "",
		"openssl binary used for S/MIME scenarios (default \"openssl\")")

	root.AddCommand(&cobra.Command{
		Use:   "list-vectors",
		Short: "List all scenario names, one per line",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range protomail.ScenarioNames() {
				fmt.Println(name)
			}
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

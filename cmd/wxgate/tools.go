package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/artpar/wxgate/core/wire"
	"github.com/artpar/wxgate/domain/message"
	"github.com/artpar/wxgate/domain/signature"
	"github.com/spf13/cobra"
)

var (
	signToken     string
	signTimestamp string
	signNonce     string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Compute a callback signature for testing",
	Long: `Compute the SHA1 callback signature the platform would send for a
given token, timestamp, and nonce. Useful for crafting test requests:

  wxgate sign --token secret --timestamp 1633000000 --nonce abc123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if signToken == "" {
			return fmt.Errorf("--token is required")
		}
		s := signature.NewSigner("")
		s.AddData(signToken, signTimestamp, signNonce)
		fmt.Println(s.Signature())
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode an XML envelope from stdin",
	Long: `Parse an XML callback envelope from stdin and print the decoded
message type and fields. Unknown message types decode as "unknown".

  cat message.xml | wxgate decode`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		msg, err := message.Parse(string(body))
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		fmt.Printf("type:   %s\n", msg.Type())
		fmt.Printf("source: %s\n", msg.Source())
		fmt.Printf("target: %s\n", msg.Target())

		raw := msg.Raw()
		names := make([]string, 0, len(raw))
		for name := range raw {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if v, ok := raw[name].(wire.Dict); ok {
				fmt.Printf("%s: %v\n", name, map[string]any(v))
				continue
			}
			fmt.Printf("%s: %v\n", name, raw[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(decodeCmd)

	signCmd.Flags().StringVar(&signToken, "token", "", "callback token")
	signCmd.Flags().StringVar(&signTimestamp, "timestamp", "", "timestamp query parameter")
	signCmd.Flags().StringVar(&signNonce, "nonce", "", "nonce query parameter")
}

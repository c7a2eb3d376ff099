package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/deppfellow/guestbook/internal/config"
	"github.com/deppfellow/guestbook/internal/lib/hashid"
	"github.com/deppfellow/guestbook/internal/lib/utils"
	"github.com/spf13/cobra"
)

type hashidOutput struct {
	ID      int64  `json:"id"`
	Encoded string `json:"encoded"`
}

func newHashidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashid",
		Short: "Convert between numeric entry ids and public ids",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <id>",
			Short: "Print the public id for a numeric entry id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				codec, err := loadCodec()
				if err != nil {
					return err
				}
				return encodeID(cmd.OutOrStdout(), codec, args[0])
			},
		},
		&cobra.Command{
			Use:   "decode <public-id>",
			Short: "Print the numeric entry id behind a public id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				codec, err := loadCodec()
				if err != nil {
					return err
				}
				return decodeID(cmd.OutOrStdout(), codec, args[0])
			},
		},
	)

	return cmd
}

func loadCodec() (*hashid.Codec, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return hashid.New(cfg.Guestbook.HashidSalt, cfg.Guestbook.HashidMinLength)
}

func encodeID(w io.Writer, codec *hashid.Codec, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("id must be an integer: %w", err)
	}

	encoded, err := codec.Encode(id)
	if err != nil {
		return err
	}
	return utils.PrintJSON(w, hashidOutput{ID: id, Encoded: encoded})
}

func decodeID(w io.Writer, codec *hashid.Codec, encoded string) error {
	id, err := codec.Decode(encoded)
	if err != nil {
		return err
	}
	return utils.PrintJSON(w, hashidOutput{ID: id, Encoded: encoded})
}

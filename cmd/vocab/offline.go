package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/starford/vocab/internal/apperr"
	"github.com/starford/vocab/internal/codec"
	"github.com/starford/vocab/internal/vocab"
)

// The commands below work on a single file outside any vault.

func readList(path string) (*vocab.List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	list, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

func args(cmd *cli.Command, names ...string) ([]string, error) {
	if cmd.Args().Len() != len(names) {
		return nil, fmt.Errorf("%w: usage: %s %s", apperr.ErrInvalidArgument, cmd.Name, strings.Join(names, " "))
	}
	return cmd.Args().Slice(), nil
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func topicsCommand() *cli.Command {
	return &cli.Command{
		Name:      "topics",
		Usage:     "List the topics of a vocabulary file",
		ArgsUsage: "FILE",
		Action: func(_ context.Context, cmd *cli.Command) error {
			a, err := args(cmd, "FILE")
			if err != nil {
				return err
			}
			list, err := readList(a[0])
			if err != nil {
				return err
			}
			w := out(cmd)
			for pos, t := range list.All() {
				fmt.Fprintf(w, "%d. %s\n", pos, t.Name)
			}
			return nil
		},
	}
}

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "words",
		Usage:     "List the words of one topic",
		ArgsUsage: "FILE POSITION",
		Action: func(_ context.Context, cmd *cli.Command) error {
			a, err := args(cmd, "FILE", "POSITION")
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(a[1])
			if err != nil {
				return fmt.Errorf("%w: position %q is not a number", apperr.ErrInvalidArgument, a[1])
			}
			list, err := readList(a[0])
			if err != nil {
				return err
			}
			t, err := list.At(pos)
			if err != nil {
				return err
			}
			w := out(cmd)
			fmt.Fprintf(w, "# %s\n", t.Name)
			for i, word := range t.Words() {
				fmt.Fprintf(w, "%d. %s\n", i+1, word)
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find the topics that list a word",
		ArgsUsage: "FILE WORD",
		Action: func(_ context.Context, cmd *cli.Command) error {
			a, err := args(cmd, "FILE", "WORD")
			if err != nil {
				return err
			}
			list, err := readList(a[0])
			if err != nil {
				return err
			}
			w := out(cmd)
			hits := vocab.FindWord(list, a[1])
			if len(hits) == 0 {
				fmt.Fprintln(w, "not found")
				return nil
			}
			for _, h := range hits {
				fmt.Fprintf(w, "%d. %s: %s\n", h.Position, h.Topic, h.Word)
			}
			return nil
		},
	}
}

func prefixCommand() *cli.Command {
	return &cli.Command{
		Name:      "prefix",
		Usage:     "List every word starting with a letter, sorted",
		ArgsUsage: "FILE LETTER",
		Action: func(_ context.Context, cmd *cli.Command) error {
			a, err := args(cmd, "FILE", "LETTER")
			if err != nil {
				return err
			}
			if utf8.RuneCountInString(a[1]) != 1 {
				return fmt.Errorf("%w: expected a single letter, got %q", apperr.ErrInvalidArgument, a[1])
			}
			list, err := readList(a[0])
			if err != nil {
				return err
			}
			letter, _ := utf8.DecodeRuneInString(a[1])
			w := out(cmd)
			for _, word := range vocab.WordsStartingWith(list, letter) {
				fmt.Fprintln(w, word)
			}
			return nil
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate a vocabulary file and print its statistics",
		ArgsUsage: "FILE",
		Action: func(_ context.Context, cmd *cli.Command) error {
			a, err := args(cmd, "FILE")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(a[0])
			if err != nil {
				return err
			}
			if _, err := codec.Unmarshal(data); err != nil {
				return fmt.Errorf("%s: %w", a[0], err)
			}
			st := codec.Inspect(data)
			fmt.Fprintf(out(cmd), "ok: %d topics, %d words, %d lines (%d blank)\n",
				st.Topics, st.Words, st.Lines, st.Blank)
			return nil
		},
	}
}

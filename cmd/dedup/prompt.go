package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamesainslie/dedup/pkg/dedup/resolve"
)

// stdinPrompter asks for per-file confirmation on the terminal. Answers are
// y (act), n (skip), or q (stop the whole run).
type stdinPrompter struct {
	in     *bufio.Reader
	out    io.Writer
	verb   string
	target string
}

func newStdinPrompter(policy resolve.Policy, targetDir string) *stdinPrompter {
	verb := "Remove"
	if policy == resolve.Relocate {
		verb = "Move"
	}
	return &stdinPrompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stderr,
		verb:   verb,
		target: targetDir,
	}
}

// Confirm implements resolve.Prompter. Unrecognized input re-asks.
func (p *stdinPrompter) Confirm(original, duplicate string) (resolve.Answer, error) {
	fmt.Fprintf(p.out, "Duplicate of %s\n", original)
	for {
		if p.target != "" {
			fmt.Fprintf(p.out, "%s %s to %s? [y/n/q] ", p.verb, duplicate, p.target)
		} else {
			fmt.Fprintf(p.out, "%s %s? [y/n/q] ", p.verb, duplicate)
		}

		line, err := p.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return resolve.Quit, nil
			}
			return resolve.No, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return resolve.Yes, nil
		case "n", "no":
			return resolve.No, nil
		case "q", "quit":
			return resolve.Quit, nil
		}
		fmt.Fprintln(p.out, "Please answer y, n, or q.")
	}
}

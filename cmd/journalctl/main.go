// SPDX-License-Identifier: LGPL-2.1-or-later
package main

import (
	"fmt"
	"os"
	"time"

	mmap "github.com/edsrzf/mmap-go"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/appgate/journaldreader/journaldreader"
)

var log = logging.Logger("journalctl")

func main() {
	app := &cli.App{
		Name:      "journalctl",
		Usage:     "read and verify a systemd-style journal file",
		ArgsUsage: "<journal-file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "header", Usage: "print the decoded journal header and exit"},
			&cli.BoolFlag{Name: "verify", Usage: "verify stored hashes and exit"},
			&cli.BoolFlag{Name: "deep", Usage: "with --verify, also check field hashes and entry xor_hash"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every decoded field, not just the syslog-style summary line"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "journalctl:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one journal file argument is required", 2)
	}
	path := c.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening %s: %v", path, err), 2)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return cli.Exit(fmt.Sprintf("mapping %s: %v", path, err), 2)
	}
	defer data.Unmap()

	j, err := journaldreader.Open(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening journal: %v", err), 1)
	}

	switch {
	case c.Bool("header"):
		fmt.Print(j.Header.String())
		return nil
	case c.Bool("verify"):
		ok := j.Verify(c.Bool("deep"))
		if ok {
			fmt.Println("PASS")
			return nil
		}
		fmt.Println("FAIL")
		return cli.Exit("", 1)
	}

	return printEntries(j, data, c.Bool("verbose"))
}

func printEntries(j *journaldreader.Journal, data []byte, verbose bool) error {
	entries := j.Entries()
	for e, ok := entries.Next(); ok; e, ok = entries.Next() {
		ts := time.UnixMicro(int64(e.Realtime)).UTC()

		hostname, _ := e.Value(data, "_HOSTNAME")
		identifier, _ := e.Value(data, "SYSLOG_IDENTIFIER")
		message, _ := e.Value(data, "MESSAGE")

		tag := identifier
		if tag != "" {
			tag += ": "
		}
		fmt.Printf("%s %s%s%s\n", ts.Format("Jan 02 15:04:05"), hostname, tag, message)

		if verbose {
			for _, item := range e.Items {
				obj, err := journaldreader.DecodeAt(data, item.ObjectOffset)
				if err != nil {
					log.Debugw("could not decode entry item", "offset", item.ObjectOffset, "err", err)
					continue
				}
				if d, ok := obj.(journaldreader.DataObject); ok {
					fmt.Printf("    %s\n", d.Payload)
				}
			}
		}
	}
	return nil
}

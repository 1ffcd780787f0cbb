// The flatfs command runs an interactive shell over a flat file system
// stored in a single host file.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/ffs"
	"github.com/mit-pdos/go-flatfs/shell"
	"github.com/mit-pdos/go-flatfs/util"
)

func run(c *cli.Context) error {
	util.SetDebug(c.Uint64("debug"))

	path := c.String("store")
	d, err := disk.NewMmapDisk(path, common.DISKBLOCKS)
	if err != nil {
		return errors.WithMessage(err, "open store")
	}
	opts := ffs.DefaultOptions()
	if c.IsSet("max-file-size") {
		opts.MaxFileSize = c.Uint64("max-file-size")
	}
	opts.Seed = c.Int64("seed")
	fs, err := ffs.Open(d, opts)
	if err != nil {
		d.Close()
		return errors.WithMessagef(err, "open %s", path)
	}
	util.DPrintf(1, "store %s: %d bytes\n", path, common.DiskSize)

	sh := shell.New(fs, os.Stdout)
	if c.Bool("no-prompt") {
		sh.Prompt = ""
	}
	runErr := sh.Run(os.Stdin)
	if err := fs.Close(); err != nil {
		return errors.WithMessagef(err, "close %s", path)
	}
	return runErr
}

func main() {
	app := &cli.App{
		Name:  "flatfs",
		Usage: "Shell over a flat file system kept in one host file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Aliases: []string{"s"}, Value: "ffs_data", Usage: "Path of the backing store, created if missing", EnvVars: []string{"FLATFS_STORE"}},
			&cli.Uint64Flag{Name: "debug", Aliases: []string{"d"}, Value: 0, Usage: "Debug log level, 0 to disable", EnvVars: []string{"FLATFS_DEBUG"}},
			&cli.Int64Flag{Name: "seed", Value: 0, Usage: "Seed for the allocators, 0 to seed from the clock"},
			&cli.Uint64Flag{Name: "max-file-size", Value: common.MaxFileSize, Usage: "Largest file import accepts, in bytes"},
			&cli.BoolFlag{Name: "no-prompt", Value: false, Usage: "Do not print a prompt before each command"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

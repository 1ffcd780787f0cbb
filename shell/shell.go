// Package shell is the line-oriented command interpreter in front of a file
// system.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/debugfs"
	"github.com/mit-pdos/go-flatfs/ffs"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

const DefaultPrompt = "$ "

const helpText = `Commands:
  import <path> [name]  copy a host file in as name (default: path)
  ls                    list files and their sizes
  del <name>            delete a file
  mv <old> <new>        rename a file
  cp <src> <dst>        copy a file
  cat <name>            print a file
  debugfs               dump bitmaps and the inode table
  df                    show free inodes and blocks
  help                  show this message
  exit                  leave the shell
`

type Shell struct {
	fs  *ffs.FS
	out io.Writer

	// Prompt is written before each line is read; empty disables it.
	Prompt string
}

func New(fs *ffs.FS, out io.Writer) *Shell {
	return &Shell{fs: fs, out: out, Prompt: DefaultPrompt}
}

func (sh *Shell) printf(format string, a ...interface{}) {
	fmt.Fprintf(sh.out, format, a...)
}

func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r'
	})
}

// Run executes commands read from in until end of input or exit. File system
// failures a user can cause are reported on the output and the loop goes on;
// any other error stops it and is returned.
func (sh *Shell) Run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if sh.Prompt != "" {
			sh.printf("%s", sh.Prompt)
		}
		if !sc.Scan() {
			break
		}
		args := tokenize(sc.Text())
		if len(args) == 0 {
			continue
		}
		util.DPrintf(3, "shell: %q\n", args)
		if args[0] == "exit" {
			return nil
		}
		if err := sh.exec(args); err != nil {
			return errors.WithMessagef(err, "%s", args[0])
		}
	}
	return errors.Wrap(sc.Err(), "read command")
}

func (sh *Shell) exec(args []string) error {
	cmd := args[0]
	switch {
	case cmd == "import" && len(args) >= 2:
		name := args[1]
		if len(args) >= 3 {
			name = args[2]
		}
		return sh.importFile(args[1], name)
	case cmd == "ls":
		files, err := sh.fs.List()
		if err != nil {
			return err
		}
		return debugfs.List(sh.out, files)
	case cmd == "del" && len(args) >= 2:
		return sh.del(args[1])
	case cmd == "mv":
		if len(args) < 3 {
			sh.printf("Usage: mv oldname newname\n")
			return nil
		}
		return sh.mv(args[1], args[2])
	case cmd == "cp":
		if len(args) < 3 {
			sh.printf("Usage: cp src dest\n")
			return nil
		}
		return sh.cp(args[1], args[2])
	case cmd == "cat" && len(args) >= 2:
		return sh.cat(args[1])
	case cmd == "debugfs":
		return debugfs.Dump(sh.out, sh.fs)
	case cmd == "df":
		return debugfs.Usage(sh.out, sh.fs)
	case cmd == "help":
		sh.printf("%s", helpText)
		return nil
	default:
		sh.printf("Unknown command: %s\n", cmd)
		return nil
	}
}

// nameError reports the errors any command taking a new name can produce.
func (sh *Shell) nameError(err error, name string) bool {
	switch {
	case errors.Is(err, ffs.ErrNameTooLong):
		sh.printf("Error: File name too long: %s\n", name)
	case errors.Is(err, ffs.ErrInvalidName):
		sh.printf("Error: Invalid file name: %q\n", name)
	default:
		return false
	}
	return true
}

func (sh *Shell) importFile(path string, name string) error {
	err := sh.fs.ImportFile(path, name)
	switch {
	case err == nil:
	case errors.Is(err, ffs.ErrSourceUnreadable):
		sh.printf("Error: Cannot stat file %s\n", path)
	case errors.Is(err, ffs.ErrSizeLimitExceeded):
		sh.printf("Error: File too large\n")
	case errors.Is(err, ffs.ErrNoInode):
		sh.printf("Error: No free inode\n")
	case errors.Is(err, ffs.ErrNoSpace):
		sh.printf("Error: Not enough space to import %s\n", path)
	case sh.nameError(err, name):
	default:
		return err
	}
	return nil
}

func (sh *Shell) del(name string) error {
	err := sh.fs.Delete(name)
	switch {
	case err == nil:
	case errors.Is(err, ffs.ErrNotFound):
		sh.printf("Error: File not found\n")
	default:
		return err
	}
	return nil
}

func (sh *Shell) mv(oldName string, newName string) error {
	err := sh.fs.Rename(oldName, newName)
	switch {
	case err == nil:
	case errors.Is(err, ffs.ErrNotFound):
		sh.printf("Error: Source file not found\n")
	case sh.nameError(err, newName):
	default:
		return err
	}
	return nil
}

func (sh *Shell) cp(src string, dst string) error {
	err := sh.fs.Copy(src, dst)
	switch {
	case err == nil:
	case errors.Is(err, ffs.ErrNotFound):
		sh.printf("Error: Source file not found\n")
	case errors.Is(err, ffs.ErrNoInode):
		sh.printf("Error: No free inode for copy\n")
	case errors.Is(err, ffs.ErrNoSpace):
		sh.printf("Error: Not enough space to copy %s\n", src)
	case errors.Is(err, ffs.ErrIndirectTypeMismatch):
		sh.printf("Error: Indirect block type mismatch\n")
	case errors.Is(err, inode.ErrCorrupt):
		sh.printf("Error: File '%s' is corrupt\n", src)
	case sh.nameError(err, dst):
	default:
		return err
	}
	return nil
}

func (sh *Shell) cat(name string) error {
	err := sh.fs.Export(name, sh.out)
	switch {
	case err == nil:
		sh.printf("\n")
	case errors.Is(err, ffs.ErrNotFound):
		sh.printf("Error: File '%s' not found in FFS\n", name)
	case errors.Is(err, ffs.ErrIndirectTypeMismatch):
		sh.printf("Error: Indirect block type mismatch\n")
	case errors.Is(err, inode.ErrCorrupt):
		sh.printf("Error: File '%s' is corrupt\n", name)
	default:
		return err
	}
	return nil
}

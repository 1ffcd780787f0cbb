package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/ffs"
	"github.com/mit-pdos/go-flatfs/inode"
)

type tester struct {
	t   *testing.T
	d   disk.Disk
	fs  *ffs.FS
	sh  *Shell
	out *bytes.Buffer
	dir string
}

func newTester(t *testing.T) *tester {
	d := disk.NewMemDisk(common.DISKBLOCKS)
	fs, err := ffs.Open(d, ffs.Options{Seed: 1})
	require.NoError(t, err)
	out := new(bytes.Buffer)
	sh := New(fs, out)
	sh.Prompt = ""
	return &tester{t: t, d: d, fs: fs, sh: sh, out: out, dir: t.TempDir()}
}

func (ts *tester) run(script string) string {
	ts.out.Reset()
	require.NoError(ts.t, ts.sh.Run(strings.NewReader(script)))
	return ts.out.String()
}

func (ts *tester) hostFile(name string, data []byte) string {
	p := filepath.Join(ts.dir, name)
	require.NoError(ts.t, os.WriteFile(p, data, 0644))
	return p
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	sort.Strings(lines)
	return lines
}

func TestPrompt(t *testing.T) {
	ts := newTester(t)
	ts.sh.Prompt = DefaultPrompt
	assert.Equal(t, "$ $ ", ts.run("ls\n"))
	assert.Equal(t, "$ ", ts.run(""))
	assert.Equal(t, "$ ", ts.run("exit\nls\n"))
}

func TestImportCatLs(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("hello.txt", []byte("hello world"))
	out := ts.run("import " + p + " hello\nls\ncat hello\n")
	assert.Equal(t, "hello 11\nhello world\n", out)

	out = ts.run("import\t" + p + "\nls\n")
	assert.ElementsMatch(t, []string{"hello 11", p + " 11"}, strings.Split(strings.TrimSuffix(out, "\n"), "\n"),
		"name defaults to the host path")
}

func TestEmptyFile(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("empty", nil)
	assert.Equal(t, "empty 0\n\n", ts.run("import "+p+" empty\nls\ncat empty\n"))
}

func TestBlankLines(t *testing.T) {
	ts := newTester(t)
	assert.Equal(t, "", ts.run("\n   \n\t\t\n\r\n"))
}

func TestUsageMessages(t *testing.T) {
	ts := newTester(t)
	for _, tc := range []struct{ in, out string }{
		{"mv", "Usage: mv oldname newname\n"},
		{"mv a", "Usage: mv oldname newname\n"},
		{"cp", "Usage: cp src dest\n"},
		{"cp a", "Usage: cp src dest\n"},
		{"import", "Unknown command: import\n"},
		{"del", "Unknown command: del\n"},
		{"cat", "Unknown command: cat\n"},
		{"frob x", "Unknown command: frob\n"},
	} {
		assert.Equal(t, tc.out, ts.run(tc.in+"\n"), "input %q", tc.in)
	}
	assert.Contains(t, ts.run("help\n"), "Commands:")
}

func TestNotFound(t *testing.T) {
	ts := newTester(t)
	missing := filepath.Join(ts.dir, "missing")
	for _, tc := range []struct{ in, out string }{
		{"import " + missing, "Error: Cannot stat file " + missing + "\n"},
		{"import " + ts.dir, "Error: Cannot stat file " + ts.dir + "\n"},
		{"del nope", "Error: File not found\n"},
		{"mv nope b", "Error: Source file not found\n"},
		{"cp nope b", "Error: Source file not found\n"},
		{"cat nope", "Error: File 'nope' not found in FFS\n"},
	} {
		assert.Equal(t, tc.out, ts.run(tc.in+"\n"), "input %q", tc.in)
	}
}

func TestMvCpDel(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("a", []byte("abc"))
	assert.Equal(t, "", ts.run("import "+p+" a\nmv a b\ncp b c\n"))
	assert.Equal(t, []string{"b 3", "c 3"}, sortedLines(ts.run("ls\n")))
	assert.Equal(t, "abc\n", ts.run("cat c\n"))

	assert.Equal(t, "", ts.run("del b\n"))
	assert.Equal(t, "c 3\n", ts.run("ls\n"))
	assert.Equal(t, "Error: File 'b' not found in FFS\n", ts.run("cat b\n"))
}

func TestTooLarge(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("big", make([]byte, common.MaxFileSize+1))
	assert.Equal(t, "Error: File too large\n", ts.run("import "+p+" big\n"))
	assert.Equal(t, "", ts.run("ls\n"))
}

func TestNoSpace(t *testing.T) {
	ts := newTester(t)
	a := ts.hostFile("a", make([]byte, 3<<20))
	b := ts.hostFile("b", make([]byte, 1<<20+1))
	assert.Equal(t, "", ts.run("import "+a+" a\n"))
	assert.Equal(t, "Error: Not enough space to import "+b+"\n", ts.run("import "+b+" b\n"))
	assert.Equal(t, "Error: Not enough space to copy a\n", ts.run("cp a a2\n"))
	assert.Equal(t, "a 3145728\n", ts.run("ls\n"))
}

func TestNoInode(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("e", nil)
	var script strings.Builder
	for i := uint64(0); i < common.NINODE; i++ {
		script.WriteString("import " + p + " e\n")
	}
	assert.Equal(t, "", ts.run(script.String()))
	assert.Equal(t, "Error: No free inode\n", ts.run("import "+p+" e\n"))
	assert.Equal(t, "Error: No free inode for copy\n", ts.run("cp e f\n"))
}

func TestNames(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("a", []byte("x"))
	long := strings.Repeat("n", int(common.MAXNAME))
	assert.Equal(t, "Error: File name too long: "+long+"\n", ts.run("import "+p+" "+long+"\n"))
	assert.Equal(t, "", ts.run("import "+p+" a\n"))
	assert.Equal(t, "Error: File name too long: "+long+"\n", ts.run("mv a "+long+"\n"))
	assert.Equal(t, "Error: File name too long: "+long+"\n", ts.run("cp a "+long+"\n"))
}

func TestIndirectMismatch(t *testing.T) {
	ts := newTester(t)
	size := (common.NDIRECT + 1) * disk.BlockSize
	p := ts.hostFile("big", bytes.Repeat([]byte("z"), int(size)))
	require.Equal(t, "", ts.run("import "+p+" big\n"))

	slots, err := ts.fs.Slots()
	require.NoError(t, err)
	var ind common.Inum
	found := false
	for _, si := range slots {
		if f, ok := si.Slot.(*inode.File); ok && f.HasIndirect {
			ind, found = f.Indirect, true
		}
	}
	require.True(t, found)
	require.NoError(t, ts.d.Write(common.SlotBlock(ind), inode.Encode(&inode.File{Name: "impostor"})))

	assert.Equal(t, "Error: Indirect block type mismatch\n", ts.run("cat big\n"))
	assert.Equal(t, "Error: Indirect block type mismatch\n", ts.run("cp big big2\n"))
	assert.Equal(t, "impostor 0\n", ts.run("del big\nls\n"))
}

func TestCorruptChain(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("a", []byte("abc"))
	require.Equal(t, "", ts.run("import "+p+" a\n"))
	info, err := ts.fs.Stat("a")
	require.NoError(t, err)
	f := &inode.File{Name: "a", Size: 3, Direct: []common.Bnum{5000}}
	require.NoError(t, ts.d.Write(common.SlotBlock(info.Inum), inode.Encode(f)))

	assert.Equal(t, "Error: File 'a' is corrupt\n", ts.run("cat a\n"))
	assert.Equal(t, "Error: File 'a' is corrupt\n", ts.run("cp a b\n"))
	assert.Equal(t, "", ts.run("del a\nls\n"))
}

func TestDebugfsDf(t *testing.T) {
	ts := newTester(t)
	p := ts.hostFile("a", []byte("abc"))
	out := ts.run("import " + p + " a\ndebugfs\n")
	assert.True(t, strings.HasPrefix(out, "=== Inode Bitmap (used=1 / free=0) ===\n"))
	assert.Contains(t, out, "FILE: a | Size: 3 | Direct: ")

	out = ts.run("df\n")
	assert.Contains(t, out, "inodes: 1023 free / 1024")
	assert.Contains(t, out, "blocks: 1023 free / 1024")
}

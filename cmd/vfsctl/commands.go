// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/corevfs/corevfs/pkg/vfs"
	"github.com/corevfs/corevfs/pkg/vfs/vfsfuse"
)

// namespaceArgs unpacks the (*vfs.FsResolver, *logrus.Entry) pair every
// subcommand below receives from subcommands.Execute, set up once in main.
func namespaceArgs(args []any) (*vfs.FsResolver, *logrus.Entry) {
	return args[0].(*vfs.FsResolver), args[1].(*logrus.Entry)
}

// fail reports err on stderr and returns the subcommands failure status,
// without terminating the process: a CLI library call should let its
// caller decide whether to exit.
func fail(name string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "vfsctl %s: %v\n", name, err)
	return subcommands.ExitFailure
}

// Ls implements "vfsctl ls <path>".
type Ls struct{}

func (*Ls) Name() string     { return "ls" }
func (*Ls) Synopsis() string { return "list a directory's entries" }
func (*Ls) Usage() string    { return "ls <path> - list a directory's entries\n" }
func (*Ls) SetFlags(*flag.FlagSet) {}

func (c *Ls) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	dir, err := resolver.Resolve(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	var names []string
	_, err = dir.ReadDir(0, vfs.DirEntrySinkFunc(func(name string, _ uint64, _ vfs.NodeType, _ uint64) bool {
		if name != vfs.DOT && name != vfs.DOTDOT {
			names = append(names, name)
		}
		return true
	}))
	if err != nil {
		return fail(c.Name(), err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}

// Stat implements "vfsctl stat <path>".
type Stat struct{}

func (*Stat) Name() string     { return "stat" }
func (*Stat) Synopsis() string { return "print a node's metadata" }
func (*Stat) Usage() string    { return "stat <path> - print a node's metadata\n" }
func (*Stat) SetFlags(*flag.FlagSet) {}

func (c *Stat) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	loc, err := resolver.Resolve(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	md, err := loc.Metadata()
	if err != nil {
		return fail(c.Name(), err)
	}
	fmt.Printf("type:   %s\n", md.NodeType)
	fmt.Printf("device: %d\n", md.Device)
	fmt.Printf("inode:  %d\n", md.Inode)
	fmt.Printf("nlink:  %d\n", md.Nlink)
	fmt.Printf("mode:   %#o\n", md.Mode)
	fmt.Printf("uid:    %d\n", md.UID)
	fmt.Printf("gid:    %d\n", md.GID)
	fmt.Printf("size:   %d\n", md.Size)
	fmt.Printf("mtime:  %s\n", md.Mtime)
	return subcommands.ExitSuccess
}

// Mkdir implements "vfsctl mkdir <path>".
type Mkdir struct {
	mode uint
}

func (*Mkdir) Name() string     { return "mkdir" }
func (*Mkdir) Synopsis() string { return "create a directory" }
func (*Mkdir) Usage() string    { return "mkdir <path> - create a directory\n" }
func (c *Mkdir) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.mode, "mode", 0o755, "permission bits for the new directory")
}

func (c *Mkdir) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	dir, name, err := resolver.ResolveNonexistent(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	if _, err := dir.Create(name, vfs.NodeTypeDirectory, vfs.NodePermission(c.mode)); err != nil {
		return fail(c.Name(), err)
	}
	return subcommands.ExitSuccess
}

// Cat implements "vfsctl cat <path>".
type Cat struct{}

func (*Cat) Name() string     { return "cat" }
func (*Cat) Synopsis() string { return "print a file's contents" }
func (*Cat) Usage() string    { return "cat <path> - print a file's contents\n" }
func (*Cat) SetFlags(*flag.FlagSet) {}

func (c *Cat) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	loc, err := resolver.Resolve(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	file, err := loc.Entry().AsFile()
	if err != nil {
		return fail(c.Name(), err)
	}
	data, err := file.ReadToEnd(0)
	if err != nil {
		return fail(c.Name(), err)
	}
	os.Stdout.Write(data)
	return subcommands.ExitSuccess
}

// Write implements "vfsctl write <path> <data>", creating the file if it
// does not already exist.
type Write struct{}

func (*Write) Name() string     { return "write" }
func (*Write) Synopsis() string { return "write data to a file, creating it if absent" }
func (*Write) Usage() string    { return "write <path> <data> - write data to a file\n" }
func (*Write) SetFlags(*flag.FlagSet) {}

func (c *Write) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	dir, name, err := resolver.ResolveParent(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	loc, err := dir.OpenFile(name, vfs.OpenOptions{Create: true, Permission: vfs.DefaultPermission})
	if err != nil {
		return fail(c.Name(), err)
	}
	file, err := loc.Entry().AsFile()
	if err != nil {
		return fail(c.Name(), err)
	}
	if err := file.SetLen(0); err != nil {
		return fail(c.Name(), err)
	}
	if _, err := file.WriteAll([]byte(f.Arg(1)), 0); err != nil {
		return fail(c.Name(), err)
	}
	return subcommands.ExitSuccess
}

// Ln implements "vfsctl ln <target> <path>", a hard link.
type Ln struct{}

func (*Ln) Name() string     { return "ln" }
func (*Ln) Synopsis() string { return "create a hard link" }
func (*Ln) Usage() string    { return "ln <target> <path> - create a hard link\n" }
func (*Ln) SetFlags(*flag.FlagSet) {}

func (c *Ln) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	target, err := resolver.Resolve(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	dir, name, err := resolver.ResolveNonexistent(f.Arg(1))
	if err != nil {
		return fail(c.Name(), err)
	}
	if _, err := dir.Link(name, target); err != nil {
		return fail(c.Name(), err)
	}
	return subcommands.ExitSuccess
}

// Rm implements "vfsctl rm <path>".
type Rm struct{}

func (*Rm) Name() string     { return "rm" }
func (*Rm) Synopsis() string { return "remove a file or empty directory" }
func (*Rm) Usage() string    { return "rm <path> - remove a file or empty directory\n" }
func (*Rm) SetFlags(*flag.FlagSet) {}

func (c *Rm) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	loc, err := resolver.Resolve(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	isDir := loc.IsDir()
	dir, name, err := resolver.ResolveParent(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	if err := dir.Unlink(name, isDir); err != nil {
		return fail(c.Name(), err)
	}
	return subcommands.ExitSuccess
}

// Mv implements "vfsctl mv <src> <dst>".
type Mv struct{}

func (*Mv) Name() string     { return "mv" }
func (*Mv) Synopsis() string { return "rename or move a file or directory" }
func (*Mv) Usage() string    { return "mv <src> <dst> - rename or move a file or directory\n" }
func (*Mv) SetFlags(*flag.FlagSet) {}

func (c *Mv) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, _ := namespaceArgs(args)
	srcDir, srcName, err := resolver.ResolveParent(f.Arg(0))
	if err != nil {
		return fail(c.Name(), err)
	}
	dstDir, dstName, err := resolver.ResolveParent(f.Arg(1))
	if err != nil {
		return fail(c.Name(), err)
	}
	if err := srcDir.Rename(srcName, dstDir, dstName); err != nil {
		return fail(c.Name(), err)
	}
	return subcommands.ExitSuccess
}

// Mount implements "vfsctl mount <host-path>": it exports the namespace
// already assembled from the TOML mount table over FUSE at host-path, and
// blocks until the mount is torn down (e.g. by "umount" on the host).
type Mount struct{}

func (*Mount) Name() string     { return "mount" }
func (*Mount) Synopsis() string { return "export the assembled namespace over FUSE" }
func (*Mount) Usage() string {
	return "mount <host-path> - export the assembled namespace over FUSE at host-path\n"
}
func (*Mount) SetFlags(*flag.FlagSet) {}

func (c *Mount) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	resolver, log := namespaceArgs(args)
	server, err := vfsfuse.Mount(f.Arg(0), resolver.RootDir(), nil)
	if err != nil {
		return fail(c.Name(), err)
	}
	log.WithField("path", f.Arg(0)).Info("serving FUSE mount")
	server.Wait()
	return subcommands.ExitSuccess
}

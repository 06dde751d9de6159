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

// Binary vfsctl assembles a corevfs namespace from a TOML mount table and
// runs a single operation (or a long-lived FUSE export) against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/corevfs/corevfs/internal/config"
)

var (
	configPath = flag.String("config", "", "path to the mount-table TOML file (mounts memfs-only namespace if empty)")
	verbose    = flag.Bool("v", false, "enable debug logging")
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&Mount{}, "")
	subcommands.Register(&Ls{}, "")
	subcommands.Register(&Stat{}, "")
	subcommands.Register(&Mkdir{}, "")
	subcommands.Register(&Cat{}, "")
	subcommands.Register(&Write{}, "")
	subcommands.Register(&Ln{}, "")
	subcommands.Register(&Rm{}, "")
	subcommands.Register(&Mv{}, "")

	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := log.WithField("component", "vfsctl")

	table := &config.MountTable{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vfsctl: %v\n", err)
			os.Exit(1)
		}
		table = loaded
	}

	resolver, err := buildNamespace(table, entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vfsctl: %v\n", err)
		os.Exit(1)
	}

	os.Exit(int(subcommands.Execute(context.Background(), resolver, entry)))
}

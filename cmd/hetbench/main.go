package main

import (
	"github.com/LynnColeArt/hetmem"
	"github.com/LynnColeArt/hetmem/cmd/hetbench/commands"
)

func main() {
	hetmem.Exit(commands.Execute())
}

package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/go-faster/jx"

	"dotmatrix/cart"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case romInfosMode:
		romInfosMain(cli.RomInfos)
	case versionMode:
		fmt.Println("dotmatrix", version())
	case runMode:
		if err := runMain(cli.Run); err != nil {
			reportRunError(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func romInfosMain(args RomInfos) {
	rom, err := cart.Open(args.RomPath)
	checkf(err, "failed to open rom")

	if !args.JSON {
		rom.PrintInfos(os.Stdout)
		return
	}

	var e jx.Encoder
	e.SetIdent(2)
	rom.EncodeJSON(&e)
	_, err = os.Stdout.Write(append(e.Bytes(), '\n'))
	checkf(err, "failed to write rom infos")
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}

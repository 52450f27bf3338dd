package main

import (
	"github.com/urfave/cli/v2"

	"github.com/sable-db/sable/go/common"
	"github.com/sable-db/sable/go/sable"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted store directory",
		Required: true,
	}
	blockFlag = cli.StringFlag{
		Name:  "block",
		Usage: "the hex-encoded block to inspect, defaults to the genesis sentinel",
	}
)

// open opens the store in the given directory at the block selected on the
// command line.
func open(ctx *cli.Context) (*sable.Store, error) {
	var tip *common.BlockID
	if hexID := ctx.String(blockFlag.Name); hexID != "" {
		id, err := common.BlockIDFromString(hexID)
		if err != nil {
			return nil, err
		}
		tip = &id
	}
	return sable.Open(ctx.String(dbDirectoryFlag.Name), tip)
}

package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a store directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&blockFlag,
	},
}

func getInfo(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	log.Printf("Opening store in %v ...", dir)
	store, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		log.Printf("Closing store in %v ...", dir)
		if closeError := store.Close(); closeError != nil {
			if err == nil {
				err = closeError
			} else {
				log.Printf("Failure closing store: %v", closeError)
			}
		}
	}()

	view := store.BeginReadOnly(nil)
	defer view.Release()
	fmt.Printf("Chain tip:    %v\n", store.GetChainTip())
	fmt.Printf("Block height: %d\n", view.GetCurrentBlockHeight())
	fmt.Printf("Root hash:    %v\n", store.GetRootHash())

	return nil
}

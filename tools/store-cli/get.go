package main

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

var (
	keyFlag = cli.StringFlag{
		Name:     "key",
		Usage:    "the key to look up",
		Required: true,
	}
	proofFlag = cli.BoolFlag{
		Name:  "proof",
		Usage: "produce a membership proof along with the value",
	}
)

var getValueCommand = cli.Command{
	Action: getValue,
	Name:   "get",
	Usage:  "looks up a key at the selected block",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&blockFlag,
		&keyFlag,
		&proofFlag,
	},
}

func getValue(ctx *cli.Context) (err error) {
	store, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
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

	key := ctx.String(keyFlag.Name)
	if !ctx.Bool(proofFlag.Name) {
		value, found := view.Get(key)
		if !found {
			return fmt.Errorf("key %q not found at block %v", key, store.GetChainTip())
		}
		fmt.Printf("%s\n", value)
		return nil
	}

	value, proof, found := view.GetWithProof(key)
	if !found {
		return fmt.Errorf("key %q not found at block %v", key, store.GetChainTip())
	}
	data, err := proof.ToBytes()
	if err != nil {
		return err
	}
	fmt.Printf("Value: %s\n", value)
	fmt.Printf("Root:  %v\n", store.GetRootHash())
	fmt.Printf("Proof: %s\n", hex.EncodeToString(data))
	return nil
}

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"tzatlas/tzif"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <tzif file A> <tzif file B>",
		Short: "Compare two compiled TZif files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1])
		},
	}
}

func runDiff(pathA, pathB string) error {
	af, err := os.ReadFile(pathA)
	if err != nil {
		return err
	}
	bf, err := os.ReadFile(pathB)
	if err != nil {
		return err
	}

	adata, err := tzif.DecodeData(bytes.NewReader(af))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", pathA, err)
	}
	bdata, err := tzif.DecodeData(bytes.NewReader(bf))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", pathB, err)
	}

	if diff := cmp.Diff(adata, bdata); diff != "" {
		fmt.Printf("files are different: -%s +%s\n", pathA, pathB)
		fmt.Println(diff)
	} else {
		fmt.Println("files are identical")
	}
	return nil
}

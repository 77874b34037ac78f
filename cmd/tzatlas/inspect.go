package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tzatlas/tzif"
)

func newInspectCmd() *cobra.Command {
	var showV1, showTransitions bool
	cmd := &cobra.Command{
		Use:   "inspect <tzif file>",
		Short: "Print the contents of a compiled TZif file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], showV1, showTransitions)
		},
	}
	cmd.Flags().BoolVar(&showV1, "v1", false, "always print the v1 header and data block")
	cmd.Flags().BoolVar(&showTransitions, "transitions", false, "print transitions in human readable form")
	return cmd
}

func runInspect(path string, showV1, showTransitions bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	data, err := tzif.DecodeData(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	if data.Version == tzif.V1 || showV1 {
		printHeader(data.V1Header)
		printV1DataBlock(data.V1Data)
	}
	if data.Version > tzif.V1 {
		printHeader(data.V2Header)
		printV2DataBlock(data.V2Data)
		if showTransitions {
			printTransitions(data.V2Data)
		}
		fmt.Println("Footer TZString =", string(data.V2Footer.TZString))
	}
	return nil
}

func printHeader(h tzif.Header) {
	fmt.Println("Header", h.Version)
	fmt.Println("  timecnt =", h.Timecnt)
	fmt.Println("  typecnt =", h.Typecnt)
	fmt.Println("  charcnt =", h.Charcnt)
	fmt.Println()
}

func printV1DataBlock(b tzif.V1DataBlock) {
	fmt.Println("Data block", tzif.V1)
	fmt.Printf("  TransitionTimes (%d) = %v\n", len(b.TransitionTimes), b.TransitionTimes)
	fmt.Printf("  TransitionTypes (%d) = %v\n", len(b.TransitionTypes), b.TransitionTypes)
	fmt.Printf("  LocalTimeTypeRecord (%d) = %+v\n", len(b.LocalTimeTypeRecord), b.LocalTimeTypeRecord)
	fmt.Printf("  TimeZoneDesignation = %v\n", strings.Split(string(b.TimeZoneDesignation), "\x00"))
	fmt.Println()
}

func printV2DataBlock(b tzif.V2DataBlock) {
	fmt.Println("Data block", tzif.V2)
	fmt.Printf("  TransitionTimes (%d) = %v\n", len(b.TransitionTimes), b.TransitionTimes)
	fmt.Printf("  TransitionTypes (%d) = %v\n", len(b.TransitionTypes), b.TransitionTypes)
	fmt.Printf("  LocalTimeTypeRecord (%d) = %+v\n", len(b.LocalTimeTypeRecord), b.LocalTimeTypeRecord)
	fmt.Printf("  TimeZoneDesignation = %v\n", strings.Split(string(b.TimeZoneDesignation), "\x00"))
	fmt.Println()
}

func printTransitions(b tzif.V2DataBlock) {
	fmt.Printf("Transitions (initial record: %s)\n", formatTimeRecord(b, 0))
	for i, tt := range b.TransitionTimes {
		fmt.Printf("  %s (%d) => %s\n", time.Unix(tt, 0).UTC().Format(time.RFC1123), tt, formatTimeRecord(b, b.TransitionTypes[i]))
	}
	fmt.Println()
}

func formatTimeRecord(b tzif.V2DataBlock, idx uint8) string {
	r := b.LocalTimeTypeRecord[idx]
	var dst string
	if r.Dst {
		dst = ", dst"
	}
	return fmt.Sprintf("%s: %s (%d)%s", readDesignation(b.TimeZoneDesignation, r.Idx), time.Duration(r.Utoff)*time.Second, r.Utoff, dst)
}

func readDesignation(d []byte, idx uint8) string {
	rest := d[idx:]
	if end := strings.IndexByte(string(rest), 0); end >= 0 {
		rest = rest[:end]
	}
	return string(rest)
}

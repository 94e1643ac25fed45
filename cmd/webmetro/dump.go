package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tangent128/webmetro/ebml"
	"github.com/Tangent128/webmetro/stream"
)

var dumpCmd = &cobra.Command{
	Use:    "dump",
	Short:  "Dumps WebM parsing events from parsing stdin",
	Hidden: true,
	RunE:   runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	p := stream.NewParser(os.Stdin, 0)
	for {
		ev, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		printElement(ev.Element)
	}
}

func printElement(el ebml.Element) {
	switch el.Kind {
	case ebml.KindTracks:
		fmt.Printf("Tracks[%d]\n", len(el.Tracks))
	case ebml.KindSimpleBlock:
		fmt.Printf("SimpleBlock@%d\n", el.SimpleBlock.Timecode)
	default:
		fmt.Printf("%s\n", el.Kind)
	}
}

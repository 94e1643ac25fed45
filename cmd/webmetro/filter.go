package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tangent128/webmetro/chunk"
	"github.com/Tangent128/webmetro/pipeline"
)

const filterSoftLimit = 2 << 20

var (
	filterThrottle bool
	filterSkip     float64
	filterTake     float64
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Copies WebM from stdin to stdout, applying the same cleanup & stripping the relay server does",
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().BoolVar(&filterThrottle, "throttle", false,
		`Slow down output to "real time" speed as determined by the timestamps (useful for streaming static files)`)
	filterCmd.Flags().Float64Var(&filterSkip, "skip", 0, "Skip the first s seconds of cluster timeline")
	filterCmd.Flags().Float64Var(&filterTake, "take", 0, "Stop after s seconds of cluster timeline (0 = unbounded)")
}

func runFilter(cmd *cobra.Command, args []string) error {
	src := pipeline.Build(os.Stdin, pipeline.Options{
		SoftLimit: filterSoftLimit,
		Throttle:  filterThrottle,
	})
	trimmed := newTimeWindow(src, filterSkip, filterTake)
	return pipeline.Drain(trimmed, os.Stdout)
}

// timeWindow drops ClusterHead/ClusterBody chunks whose cluster falls
// outside [skip, skip+take) seconds, per spec.md §6's --skip/--take flags.
// A zero take means unbounded.
type timeWindow struct {
	src        pipeline.Stage
	skipMS     uint64
	endMS      uint64
	haveEnd    bool
	inWindow   bool
	pastWindow bool
}

func newTimeWindow(src pipeline.Stage, skipSeconds, takeSeconds float64) pipeline.Stage {
	if skipSeconds <= 0 && takeSeconds <= 0 {
		return src
	}
	tw := &timeWindow{src: src, skipMS: uint64(skipSeconds * 1000)}
	if takeSeconds > 0 {
		tw.endMS = tw.skipMS + uint64(takeSeconds*1000)
		tw.haveEnd = true
	}
	return tw
}

func (tw *timeWindow) Next() (chunk.Chunk, error) {
	for {
		if tw.pastWindow {
			return chunk.Chunk{}, io.EOF
		}
		c, err := tw.src.Next()
		if err != nil {
			return chunk.Chunk{}, err
		}
		if c.Kind != chunk.KindClusterHead && c.Kind != chunk.KindClusterBody {
			return c, nil
		}
		if c.Kind == chunk.KindClusterHead {
			tw.inWindow = c.Head.StartMS >= tw.skipMS && (!tw.haveEnd || c.Head.StartMS < tw.endMS)
			if tw.haveEnd && c.Head.StartMS >= tw.endMS {
				tw.pastWindow = true
				continue
			}
		}
		if tw.inWindow {
			return c, nil
		}
	}
}

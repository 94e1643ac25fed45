package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tangent128/webmetro/pipeline"
)

const sendSoftLimit = 2 << 20

var (
	sendThrottle bool
	sendSkip     float64
	sendTake     float64
)

var sendCmd = &cobra.Command{
	Use:   "send <url>",
	Short: "PUTs WebM from stdin to a relay server",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendThrottle, "throttle", false,
		`Slow down upload to "real time" speed as determined by the timestamps (useful for streaming static files)`)
	sendCmd.Flags().Float64Var(&sendSkip, "skip", 0, "Skip the first s seconds of cluster timeline")
	sendCmd.Flags().Float64Var(&sendTake, "take", 0, "Stop after s seconds of cluster timeline (0 = unbounded)")
}

func runSend(cmd *cobra.Command, args []string) error {
	url := args[0]

	src := pipeline.Build(os.Stdin, pipeline.Options{
		SoftLimit: sendSoftLimit,
		Throttle:  sendThrottle,
	})
	trimmed := newTimeWindow(src, sendSkip, sendTake)

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(pipeline.Drain(trimmed, pw))
	}()

	req, err := http.NewRequest(http.MethodPut, url, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "video/webm")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("relay responded %s", resp.Status)
	}
	return nil
}

package launcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	config "leaderboard-launcher/internal/config"
	executor "leaderboard-launcher/internal/executor"
	frames "leaderboard-launcher/internal/frames"

	"github.com/spf13/cobra"
)

var ffmpegCommand = "ffmpeg"

func newVideoCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:           "video <images-dir> [fps]",
		Short:         "Stitch a route's visualization frames into an mp4 with ffmpeg",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fps := frames.DefaultFPS
			if len(args) > 1 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("fps must be a positive integer, got %q", args[1])
				}
				fps = n
			}
			code := runWithLoggerAndCleanup("video", false, func() int {
				return runVideo(args[0], output, fps)
			})
			return exitErrorOrNil(code)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <images-dir>/"+frames.OutputVideoName+")")
	return cmd
}

func runVideo(dir, output string, fps int) int {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		logError(fmt.Sprintf("invalid images dir %q: %v", dir, err))
		return 1
	}
	list, err := frames.List(absDir)
	if err != nil {
		logError(err.Error())
		return 1
	}
	if output == "" {
		output = filepath.Join(absDir, frames.OutputVideoName)
	}
	logInfo(fmt.Sprintf("Encoding %d frames from %s at %d fps", len(list), absDir, fps))

	listPath, err := frames.WriteConcatList(list, fps)
	if err != nil {
		logError(err.Error())
		return 1
	}
	defer os.Remove(listPath)

	restoreKillDelay := executor.SetForceKillDelay(config.ResolveForceKillDelay())
	defer restoreKillDelay()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runExecutorFn(ctx, executor.Spec{
		Name:    "ffmpeg",
		Command: ffmpegCommand,
		Args:    frames.FFmpegArgs(listPath, output, fps),
		Stdout:  consoleOut,
		Stderr:  consoleErr,
	})
	if err != nil {
		logError(err.Error())
		return res.ExitCode
	}
	if res.ExitCode != 0 {
		logError(fmt.Sprintf("ffmpeg exited with code %d", res.ExitCode))
		return res.ExitCode
	}
	fmt.Fprintf(consoleOut, "Video saved to %s (%d frames)\n", output, len(list))
	return 0
}
